package tasks

import "errors"

var ErrRunningTask = errors.New("error running task")
