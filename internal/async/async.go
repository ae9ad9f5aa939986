package async

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/hibiken/asynq"
	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/openkcm/tenancy/internal/async/tasks"
	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/log"
)

const (
	// syncInterval is the interval at which the scheduler checks for config changes.
	syncInterval = 10 * time.Second
)

var (
	ErrLoadingTaskQueueHost = errors.New("error loading task queue host")
	ErrMTLSRedisClientOpt   = errors.New("error redis client opt")
	ErrSecretTypeQueue      = errors.New("unsupported secret type for task queue")
	ErrACLPassword          = errors.New("ACL is not load password for redis client")
	ErrACLUsername          = errors.New("ACL is not load username for redis client")
)

// TaskHandler defines the interface for handling async
type TaskHandler interface {
	ProcessTask(ctx context.Context, task *asynq.Task) error
	TaskType() string
}

// Client enqueues tasks. It is satisfied by *asynq.Client.
type Client interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// TenantJobs is what the worker tasks run against.
type TenantJobs interface {
	tasks.ExpiredPurger
	tasks.StatusCounter
}

// App manages task processing, scheduling, and worker functionality
type App struct {
	asynqClient    Client
	asynqServer    *asynq.Server
	asynqServerCfg asynq.Config
	taskQueueCfg   asynq.RedisClientOpt
	tasks          map[string]TaskHandler
	cfg            *config.Config
}

// New creates a new instance of App
func New(cfg *config.Config) (*App, error) {
	redisOpts, err := RedisClientOpt(cfg.Scheduler.TaskQueue)
	if err != nil {
		return nil, err
	}

	return &App{
		taskQueueCfg: redisOpts,
		asynqClient:  asynq.NewClient(redisOpts),
		tasks:        make(map[string]TaskHandler),
		cfg:          cfg,
	}, nil
}

// RedisClientOpt builds the connection options of the task queue.
func RedisClientOpt(taskQueueCfg config.Redis) (asynq.RedisClientOpt, error) {
	taskQueueHost, err := commoncfg.LoadValueFromSourceRef(taskQueueCfg.Host)
	if err != nil {
		return asynq.RedisClientOpt{}, errs.Wrap(ErrLoadingTaskQueueHost, err)
	}

	switch taskQueueCfg.SecretRef.Type {
	case "", commoncfg.InsecureSecretType:
		redisOpts := asynq.RedisClientOpt{
			Addr: net.JoinHostPort(string(taskQueueHost), taskQueueCfg.Port),
		}

		err = applyACL(&redisOpts, taskQueueCfg)
		if err != nil {
			return asynq.RedisClientOpt{}, err
		}

		return redisOpts, nil
	case commoncfg.MTLSSecretType:
		redisOpts, err := buildMTLSRedisClientOpt(taskQueueCfg, taskQueueHost)
		if err != nil {
			return asynq.RedisClientOpt{}, errs.Wrap(ErrMTLSRedisClientOpt, err)
		}

		return redisOpts, nil
	default:
		return asynq.RedisClientOpt{}, ErrSecretTypeQueue
	}
}

func (a *App) Client() Client {
	return a.asynqClient
}

// Inspector returns a queue inspector. The caller closes it.
func (a *App) Inspector() *asynq.Inspector {
	return asynq.NewInspector(a.taskQueueCfg)
}

// RegisterTasks registers multiple task handlers
func (a *App) RegisterTasks(ctx context.Context, handlers []TaskHandler) {
	for _, handler := range handlers {
		taskType := handler.TaskType()
		a.tasks[taskType] = handler
		log.Info(ctx, "Registered task", slog.String("Name", taskType))
	}
}

// NewTaskHandlers returns the handlers of every defined task type.
func NewTaskHandlers(jobs TenantJobs, cfg config.Tenancy) []TaskHandler {
	return []TaskHandler{
		tasks.NewNamespacePurger(jobs, cfg.PurgeRetention),
		tasks.NewStatusReporter(jobs),
	}
}

// Mux routes each registered task type to its handler.
func (a *App) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()

	for taskName, handler := range a.tasks {
		mux.HandleFunc(taskName, handler.ProcessTask)
	}

	return mux
}

// RunWorker starts the worker process to process the tasks. It blocks
// until the process receives a termination signal.
func (a *App) RunWorker(ctx context.Context, jobs TenantJobs) error {
	log.Info(ctx, "Starting async worker")

	a.RegisterTasks(ctx, NewTaskHandlers(jobs, a.cfg.Tenancy))

	a.asynqServer = asynq.NewServer(a.taskQueueCfg, a.asynqServerCfg)

	log.Info(ctx, "Starting worker server")

	err := a.asynqServer.Run(a.Mux())
	if err != nil {
		return errs.Wrap(ErrStartingWorker, err)
	}

	return nil
}

// RunScheduler starts the cron job scheduling of the configured tasks
func (a *App) RunScheduler() error {
	provider := &ScheduledTaskConfigProvider{a.cfg}

	mgr, err := asynq.NewPeriodicTaskManager(
		asynq.PeriodicTaskManagerOpts{
			RedisConnOpt:               a.taskQueueCfg,
			PeriodicTaskConfigProvider: provider,
			SyncInterval:               syncInterval,
		})
	if err != nil {
		return errs.Wrap(ErrCreatingScheduler, err)
	}

	err = mgr.Run()
	if err != nil {
		return errs.Wrap(ErrRunningScheduler, err)
	}

	return nil
}

// EnqueueTask is used to run tasks
func (a *App) EnqueueTask(
	ctx context.Context,
	task *asynq.Task,
	opts ...asynq.Option,
) (*asynq.TaskInfo, error) {
	ctx = log.InjectTask(ctx, task)
	log.Debug(ctx, "Enqueuing task to be processed")

	info, err := a.asynqClient.Enqueue(task, opts...)
	if err != nil {
		return nil, errs.Wrap(ErrEnqueueingTask, err)
	}

	log.Debug(ctx, "Enqueued task", slog.String("id", info.ID))

	return info, nil
}

// Shutdown gracefully shuts down the worker and scheduler
func (a *App) Shutdown(ctx context.Context) error {
	log.Info(ctx, "Starting async app shutdown")

	if a.asynqServer != nil {
		a.asynqServer.Shutdown()
	}

	if a.asynqClient != nil {
		err := a.asynqClient.Close()
		if err != nil {
			return errs.Wrap(ErrClientShutdown, err)
		}
	}

	log.Info(ctx, "Async app shutdown completed")

	return nil
}

func buildMTLSRedisClientOpt(
	taskQueueCfg config.Redis,
	taskQueueHost []byte,
) (asynq.RedisClientOpt, error) {
	tlsConfig, err := commoncfg.LoadMTLSConfig(&taskQueueCfg.SecretRef.MTLS)
	if err != nil {
		return asynq.RedisClientOpt{}, errs.Wrap(config.ErrLoadMTLSConfig, err)
	}

	clientOps := asynq.RedisClientOpt{
		Addr:      net.JoinHostPort(string(taskQueueHost), taskQueueCfg.Port),
		TLSConfig: tlsConfig,
	}

	err = applyACL(&clientOps, taskQueueCfg)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return clientOps, nil
}

func applyACL(opts *asynq.RedisClientOpt, cfg config.Redis) error {
	if !cfg.ACL.Enabled {
		return nil
	}

	username, err := commoncfg.LoadValueFromSourceRef(cfg.ACL.Username)
	if err != nil {
		return ErrACLUsername
	}

	password, err := commoncfg.LoadValueFromSourceRef(cfg.ACL.Password)
	if err != nil {
		return ErrACLPassword
	}

	opts.Username = string(username)
	opts.Password = string(password)

	return nil
}
