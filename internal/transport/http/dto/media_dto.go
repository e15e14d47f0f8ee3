package dto

type MediaAssetResponse struct {
	ID       int64  `json:"id"`
	Kind     string `json:"kind"`
	Position int    `json:"position"`
	URL      string `json:"url"`
}

type MediaListResponse struct {
	Items []MediaAssetResponse `json:"items"`
}
