package dto

type EventItem struct {
	Name  string         `json:"name"`
	TS    int64          `json:"ts"`
	Props map[string]any `json:"props"`
}

type EventsBatchRequest struct {
	Events []EventItem `json:"events"`
}
