package events

type DeleteResponse struct {
	ID      string        `json:"id"`
	Deleted bool          `json:"deleted"`
	Outcome DeleteOutcome `json:"outcome"`
}

type FormResponse struct {
	Mode   string     `json:"mode"`
	ID     string     `json:"id,omitempty"`
	Values FormValues `json:"values"`
}
