package async

func (a *App) SetClient(c Client) {
	a.asynqClient = c
}
