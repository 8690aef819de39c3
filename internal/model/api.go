package model

import "time"

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query    string `json:"query"`
	Location string `json:"location,omitempty"`
	ThreadID string `json:"thread_id,omitempty"`
}

// QueryResponse is the unified response for all conversational turns.
type QueryResponse struct {
	Success          bool             `json:"success"`
	Message          string           `json:"message"`
	Query            string           `json:"query"`
	ThreadID         string           `json:"thread_id"`
	CommandType      CommandType      `json:"command_type,omitempty"`
	Restaurants      []RestaurantInfo `json:"restaurants,omitempty"`
	ResponseCount    int              `json:"response_count"`
	CollectionResult any              `json:"collection_result,omitempty"`
	Error            string           `json:"error,omitempty"`
	Timestamp        time.Time        `json:"timestamp"`
}
