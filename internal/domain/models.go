package domain

// CheckinRow is the GORM mapping of a Record for the indexed SQL store.
//
// Fields:
//   - Key: storage key, primary key (scan_YYYYMMDD_HHMMSS_xxxxxx.json).
//   - Code: submitted code; indexed together with ReceivedUnix for latest-by-code.
//   - ReceivedUnix: receipt instant in microseconds since the epoch.
//   - Document: the encoded record, served verbatim on download.
type CheckinRow struct {
	Key          string `gorm:"type:varchar(64);primaryKey"`
	Code         string `gorm:"type:text;not null;index:idx_checkins_code_received,priority:1"`
	UserLabel    string `gorm:"type:text;not null"`
	Device       string `gorm:"type:text;not null"`
	SentAt       string `gorm:"type:text;not null"`
	ReceivedAt   string `gorm:"type:text;not null"`
	ReceivedUnix int64  `gorm:"not null;index:idx_checkins_code_received,priority:2"`
	OnTime       bool   `gorm:"not null"`
	Document     []byte `gorm:"type:blob;not null"`
}

// TableName returns the database table name for CheckinRow.
func (CheckinRow) TableName() string { return "checkins" }

// Record converts the row back into its domain form.
func (r CheckinRow) Record() Record {
	return Record{
		Code:       r.Code,
		UserLabel:  r.UserLabel,
		Device:     r.Device,
		SentAt:     r.SentAt,
		ReceivedAt: r.ReceivedAt,
		OnTime:     r.OnTime,
	}
}
