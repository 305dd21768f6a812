package exporter

// ProgressEvent 结果写出进度
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
}

// reportProgress percent 限制在 [0, 100]
func reportProgress(progress func(ProgressEvent), percent int, stage string) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{
		Percent: min(max(percent, 0), 100),
		Stage:   stage,
	})
}
