package model

import (
	"time"
)

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:64;not null;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         UserRole   `gorm:"type:varchar(16);not null;default:actor" json:"role"`
	IsPart       string     `gorm:"type:varchar(3);not null;default:No" json:"isPart"`
	Avatar       []byte     `json:"avatar,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type UserRole string

const (
	RoleActor     UserRole = "actor"
	RoleOrganizer UserRole = "organizer"
)

// Participation flag values, stored as strings.
const (
	PartYes = "Yes"
	PartNo  = "No"
)

type Performance struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Title           string `gorm:"size:200;not null" json:"title"`
	Description     string `gorm:"type:text" json:"description,omitempty"`
	PerformanceDate string `gorm:"size:32;index" json:"performance_date"`
	CoverImage      []byte `json:"cover_image,omitempty"`
	Roles           []Role `gorm:"foreignKey:PerformanceID;constraint:OnDelete:CASCADE" json:"-"`
}

// PerformanceSummary is the list view of a performance. It carries no
// description or cover image.
type PerformanceSummary struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	PerformanceDate string `json:"performance_date"`
}

type Role struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	PerformanceID uint       `gorm:"not null;index" json:"performance_id"`
	RoleName      string     `gorm:"size:200;not null" json:"role_name"`
	Description   string     `gorm:"type:text" json:"description"`
	Status        RoleStatus `gorm:"type:varchar(16);not null;default:open" json:"status"`
	// AssignedUser is a plain username, not a foreign key into users.
	AssignedUser *string       `gorm:"size:64" json:"assigned_user"`
	Applications []Application `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
}

type RoleStatus string

const (
	RoleStatusOpen     RoleStatus = "open"
	RoleStatusAssigned RoleStatus = "assigned"
	RoleStatusClosed   RoleStatus = "closed"
)

type Application struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	RoleID    uint              `gorm:"not null;index:idx_application_role_user" json:"role_id"`
	Username  string            `gorm:"size:64;not null;index:idx_application_role_user" json:"username"`
	Status    ApplicationStatus `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	AppliedAt time.Time         `gorm:"not null;index" json:"applied_at"`
}

// ApplicationStatus values approved and rejected never persist: the row is deleted instead.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// ApplicationView is an application joined with its role and performance.
type ApplicationView struct {
	ID        uint              `json:"id"`
	RoleID    uint              `json:"role_id"`
	RoleName  string            `json:"role_name"`
	Title     string            `json:"title"`
	Username  string            `json:"username"`
	Status    ApplicationStatus `json:"status"`
	AppliedAt time.Time         `json:"applied_at"`
}

type Lesson struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Date        string `gorm:"size:32" json:"date"`
	Time        string `gorm:"size:16" json:"time"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `gorm:"size:200" json:"location"`
	CreatedBy   string `gorm:"size:64" json:"created_by"`
}

// FileRecord describes a file shared by a member.
type FileRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FileName      string    `gorm:"size:255;not null" json:"file_name"`
	FilePath      string    `gorm:"size:512" json:"file_path"`
	FileSize      string    `gorm:"size:32" json:"file_size"`
	FileExtension string    `gorm:"size:16" json:"file_extension"`
	UploadedBy    string    `gorm:"size:64" json:"uploaded_by"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

func (FileRecord) TableName() string { return "files" }

type AdditionalFile struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FileName      string    `gorm:"size:255;not null" json:"file_name"`
	FilePath      string    `gorm:"size:512;index" json:"file_path"`
	FileSize      string    `gorm:"size:32" json:"file_size"`
	FileExtension string    `gorm:"size:16" json:"file_extension"`
	LastModified  string    `gorm:"size:32" json:"last_modified"`
	CreatedDate   time.Time `json:"created_date"`
	// StoredContent marks records whose content was uploaded to the object
	// store. Only those own the object at FilePath.
	StoredContent bool `gorm:"not null;default:false" json:"stored_content"`
}
