// Package domain defines the persistence models for users, media items, and
// ratings. These types are mapped with GORM and form the core data layer of
// the media sharing application.
package domain

import "time"

// User privilege levels. The numeric values mirror the user_levels lookup
// table: regular accounts are level 1, administrators level 2.
const (
	UserLevelStandard = 1
	UserLevelAdmin    = 2
)

// User represents a registered account. The password column stores a bcrypt
// hash and is never serialized to JSON; read endpoints therefore never expose
// credential material.
//
// Fields:
//   - ID: autoincrement primary key.
//   - Username: unique handle (alphanumeric, 3–20 chars, validated at the
//     transport layer).
//   - Email: unique contact address.
//   - Password: bcrypt hash of the secret (json:"-").
//   - UserLevelID: privilege level (UserLevelStandard or UserLevelAdmin).
//   - CreatedAt: timestamp managed by GORM.
type User struct {
	ID          int64     `json:"user_id"       gorm:"column:user_id;primaryKey;autoIncrement"`
	Username    string    `json:"username"      gorm:"type:varchar(20);not null;uniqueIndex:ux_users_username"`
	Email       string    `json:"email"         gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	Password    string    `json:"-"             gorm:"type:varchar(255);not null"`
	UserLevelID int       `json:"user_level_id" gorm:"not null;default:1"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// IsAdmin reports whether the account holds the admin privilege level.
func (u User) IsAdmin() bool { return u.UserLevelID == UserLevelAdmin }

// MediaItem represents an uploaded media file and its metadata. UserID is the
// owning account and is immutable after creation; the access-control policy
// reads it to decide mutation rights.
//
// Fields:
//   - ID: autoincrement primary key.
//   - UserID: owner account (indexed; FK to users).
//   - Title / Description: caller-supplied metadata (validated 3–50 / ≤255).
//   - Filename: stored name under the upload directory (never the client name).
//   - Filesize: size in bytes as reported at upload time.
//   - MediaType: MIME type of the stored file (image/* or video/*).
//   - CreatedAt: timestamp managed by GORM.
type MediaItem struct {
	ID          int64     `json:"media_id"    gorm:"column:media_id;primaryKey;autoIncrement"`
	UserID      int64     `json:"user_id"     gorm:"not null;index:idx_media_owner"`
	Title       string    `json:"title"       gorm:"type:varchar(50);not null"`
	Description string    `json:"description" gorm:"type:varchar(255)"`
	Filename    string    `json:"filename"    gorm:"type:varchar(255);not null"`
	Filesize    int64     `json:"filesize"    gorm:"not null"`
	MediaType   string    `json:"media_type"  gorm:"type:varchar(64);not null"`
	CreatedAt   time.Time `json:"created_at"`

	// Owner is the FK association; media rows are cascade-deleted when the
	// owning user is removed.
	Owner User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for MediaItem.
func (MediaItem) TableName() string { return "media_items" }

// Rating represents a 1–5 star rating a user has given a media item. A user
// can rate a given media item at most once, enforced by the composite unique
// index on (media_id, user_id); the duplicate surfaces from the constraint
// rather than a pre-check so concurrent inserts cannot slip through.
type Rating struct {
	ID          int64     `json:"rating_id"    gorm:"column:rating_id;primaryKey;autoIncrement"`
	MediaID     int64     `json:"media_id"     gorm:"not null;index;uniqueIndex:ux_ratings_media_user"`
	UserID      int64     `json:"user_id"      gorm:"not null;index;uniqueIndex:ux_ratings_media_user"`
	RatingValue int       `json:"rating_value" gorm:"not null;check:rating_value BETWEEN 1 AND 5"`
	CreatedAt   time.Time `json:"created_at"`

	// Media is the rated item. Ratings are cascade-deleted when the media
	// item is removed.
	Media MediaItem `json:"-" gorm:"foreignKey:MediaID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Rating.
func (Rating) TableName() string { return "ratings" }
