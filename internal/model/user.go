package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user document in the users collection.
// PasswordHash never leaves the server; response shapes below carry no
// field for it.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Avatar       string             `bson:"avatar,omitempty"`
	Bio          string             `bson:"bio,omitempty"`
	RatedMovies  []RatedMovie       `bson:"rated_movies,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

// RatedMovie is one entry of a user's personal ratings, embedded in the
// user document. MovieID is the upstream metadata API's numeric id.
type RatedMovie struct {
	MovieID int64  `bson:"movie_id" json:"movieId"`
	Title   string `bson:"title" json:"title"`
	Rating  int    `bson:"rating" json:"rating"`
	Review  string `bson:"review,omitempty" json:"review,omitempty"`
}

// SignupRequest represents a registration request.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest represents a login request.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries the mutable display fields. Nil means
// "leave unchanged".
type UpdateProfileRequest struct {
	Avatar *string `json:"avatar"`
	Bio    *string `json:"bio"`
}

// PublicUser is the subset of a user returned by signup and signin.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProfileResponse is the full wire view of a user's own account.
type ProfileResponse struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	Avatar      string       `json:"avatar,omitempty"`
	Bio         string       `json:"bio,omitempty"`
	RatedMovies []RatedMovie `json:"ratedMovies"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// AuthResult pairs a freshly issued session token with the public view of
// the authenticated user. The token travels only in the session cookie,
// never in a response body.
type AuthResult struct {
	Token string
	User  PublicUser
}

// Public projects the user to its public view.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
	}
}

// Profile projects the user to its profile view, leaving the password hash
// behind.
func (u *User) Profile() ProfileResponse {
	rated := u.RatedMovies
	if rated == nil {
		rated = []RatedMovie{}
	}
	return ProfileResponse{
		ID:          u.ID.Hex(),
		Username:    u.Username,
		Email:       u.Email,
		Avatar:      u.Avatar,
		Bio:         u.Bio,
		RatedMovies: rated,
		CreatedAt:   u.CreatedAt,
	}
}
