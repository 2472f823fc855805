package client

// RadioInfo contains the backend's current radio parameters. The backend
// pushes them when the connection is established, so the client collects
// them automatically and provides them through this type.
type RadioInfo struct {
	Device     string `json:"device"`
	CenterFreq int    `json:"center_freq"`
	SampleRate int    `json:"sample_rate"`
}

// SetRadioInfo handles the radio-info push.
func (i *RadioInfo) SetRadioInfo(info RadioInfo) {
	*i = info
}
