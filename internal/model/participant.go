package model

// Participant 会众成员 对应表 participants
type Participant struct {
	ParticipantID       string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"participant_id"`
	Name                string           `gorm:"type:varchar(100);not null"                     json:"name"`
	Gender              string           `gorm:"type:varchar(10);not null"                      json:"gender"` // male | female
	Role                string           `gorm:"type:varchar(40);not null"                      json:"role"`
	Active              bool             `gorm:"not null;default:true"                          json:"active"`
	Minor               bool             `gorm:"not null;default:false"                         json:"minor"`
	FamilyGroupID       *string          `gorm:"type:varchar(64)"                               json:"family_group_id,omitempty"`
	PrimaryGuardianID   *string          `gorm:"type:uuid"                                      json:"primary_guardian_id,omitempty"`
	SecondaryGuardianID *string          `gorm:"type:uuid"                                      json:"secondary_guardian_id,omitempty"`
	FatherID            *string          `gorm:"type:uuid"                                      json:"father_id,omitempty"`
	MotherID            *string          `gorm:"type:uuid"                                      json:"mother_id,omitempty"`
	Qualifications      QualificationSet `gorm:"type:jsonb;not null;default:'{}'"               json:"qualifications"`
	VersionedModel
}

// TableName 指定表名
func (Participant) TableName() string { return "participants" }
