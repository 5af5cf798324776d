package users

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the account model. A record is either inactive with a pending
// activation token, or active with no token; Activate is the only path
// between the two states.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID              int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	Username        string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email           string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash    string     `bun:"password_hash,notnull" json:"-"`
	Inactive        bool       `bun:"inactive,notnull,default:true" json:"-"`
	ActivationToken string     `bun:"activation_token,nullzero" json:"-"`
	LoginAttempts   int        `bun:"login_attempts,notnull,default:0" json:"-"`
	LoginAttemptAt  *time.Time `bun:"login_attempt_at,nullzero" json:"-"`
	CreatedAt       time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
	UpdatedAt       time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"-"`
}

// Activate flips the record to its active state, consuming the token.
func (u *User) Activate() {
	u.Inactive = false
	u.ActivationToken = ""
}

// AuthToken associates an opaque session credential with its owning user.
// Rows are deleted together with the owner.
type AuthToken struct {
	bun.BaseModel `bun:"table:auth_tokens,alias:tok"`

	Token     string    `bun:"token,pk" json:"token"`
	UserID    int64     `bun:"user_id,notnull" json:"user_id"`
	User      *User     `bun:"rel:belongs-to,join:user_id=id" json:"-"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"-"`
}

// UserDTO is the outward shape of a user record. Password hash and
// activation token never leave the process.
type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// NewUserDTO maps a stored record to its response form.
func NewUserDTO(user *User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}
