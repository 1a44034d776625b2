package api

import "time"

// ListResult is the server's paged list envelope.
type ListResult[T any] struct {
	Total int `json:"Total"`
	List  []T `json:"List"`
}

// SeriesIDs holds the identifiers of a series.
type SeriesIDs struct {
	ID    int `json:"ID"`
	AniDB int `json:"AniDB"`
}

// Series is the subset of a series record the utilities use.
type Series struct {
	IDs     SeriesIDs `json:"IDs"`
	Name    string    `json:"Name"`
	Created time.Time `json:"Created"`
}

// SeriesPage is one page of series.
type SeriesPage = ListResult[Series]

type loginRequest struct {
	User   string `json:"user"`
	Pass   string `json:"pass"`
	Device string `json:"device"`
}

type loginResponse struct {
	APIKey string `json:"apikey"`
}
