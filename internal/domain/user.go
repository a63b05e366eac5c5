package domain

// UserInfo is the identity view consumed from the user directory.
type UserInfo struct {
	ID       string `bson:"_id" json:"id"`
	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`
}

const (
	UnknownUsername = "unknown user"
	UnknownEmail    = ""
)

// UnknownUser is the sentinel returned when the directory cannot resolve an
// id. A degraded view beats a failed read.
func UnknownUser(id string) *UserInfo {
	return &UserInfo{ID: id, Username: UnknownUsername, Email: UnknownEmail}
}
