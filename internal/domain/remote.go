package domain

import "context"

// UserRecord is the user document returned by the Remote Weight API. A nil
// Weight means the document carried no entry list at all, which differs from
// an empty one.
type UserRecord struct {
	Username string        `json:"username"`
	Weight   []WeightEntry `json:"weight"`
}

// UserPayload is the body of a fetch-user response. User is nil when the
// body has no user document.
type UserPayload struct {
	User *UserRecord `json:"user"`
}

// FetchUserResponse is a settled fetch-user call.
type FetchUserResponse struct {
	Status int
	Data   UserPayload
}

// StatusResponse is a settled add, delete or modify call.
type StatusResponse struct {
	Status int
}

// WeightAPI is the port for the Remote Weight API. A returned error means the
// call was rejected; otherwise the response carries the settled status code.
type WeightAPI interface {
	FetchUser(ctx context.Context, user, token string) (*FetchUserResponse, error)
	AddEntry(ctx context.Context, user, token, date string, weight float64) (*StatusResponse, error)
	DeleteEntry(ctx context.Context, user, token, date string) (*StatusResponse, error)
	ModifyEntry(ctx context.Context, user, token, date string, weight float64) (*StatusResponse, error)
}
