package model

type NoteStats struct {
	ViewCount     int64 `db:"view_count" json:"view_count"`
	DownloadCount int64 `db:"download_count" json:"download_count"`
}

type UserStats struct {
	TotalNotes     int64 `db:"total_notes" json:"total_notes"`
	TotalViews     int64 `db:"total_views" json:"total_views"`
	TotalDownloads int64 `db:"total_downloads" json:"total_downloads"`
}

type PlatformStats struct {
	TotalNotes     int64 `db:"total_notes" json:"total_notes"`
	TotalUsers     int64 `db:"total_users" json:"total_users"`
	TotalViews     int64 `db:"total_views" json:"total_views"`
	TotalDownloads int64 `db:"total_downloads" json:"total_downloads"`
}
