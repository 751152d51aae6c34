package db

import "time"

const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// TranslationRun maps staylens.translation_runs.
type TranslationRun struct {
	RunID            string     `gorm:"column:run_id;type:text;primaryKey"`
	ProviderName     string     `gorm:"column:provider_name;type:text;not null"`
	TargetLang       string     `gorm:"column:target_lang;type:text;not null"`
	DryRun           bool       `gorm:"column:dry_run;type:boolean;not null;default:false"`
	StartedAt        time.Time  `gorm:"column:started_at;type:timestamptz;not null;default:now()"`
	FinishedAt       *time.Time `gorm:"column:finished_at;type:timestamptz"`
	Status           string     `gorm:"column:status;type:staylens.translation_run_status;not null;default:running"`
	Total            int        `gorm:"column:total;type:integer;not null;default:0"`
	Translated       int        `gorm:"column:translated;type:integer;not null;default:0"`
	Cached           int        `gorm:"column:cached;type:integer;not null;default:0"`
	Skipped          int        `gorm:"column:skipped;type:integer;not null;default:0"`
	Batches          int        `gorm:"column:batches;type:integer;not null;default:0"`
	FailedBatchIndex *int       `gorm:"column:failed_batch_index;type:integer"`
	ErrorMessage     *string    `gorm:"column:error_message;type:text"`
}

func (TranslationRun) TableName() string { return "staylens.translation_runs" }

// ReviewTranslation maps staylens.review_translations.
type ReviewTranslation struct {
	ReviewTranslationID int64     `gorm:"column:review_translation_id;primaryKey;autoIncrement"`
	ReviewID            int64     `gorm:"column:review_id;type:bigint;not null;uniqueIndex:review_translations_identity,priority:1"`
	ContentHash         []byte    `gorm:"column:content_hash;type:bytea;not null;uniqueIndex:review_translations_identity,priority:2"`
	TargetLang          string    `gorm:"column:target_lang;type:text;not null;uniqueIndex:review_translations_identity,priority:3"`
	SourceLang          string    `gorm:"column:source_lang;type:text;not null;default:und"`
	OriginalText        string    `gorm:"column:original_text;type:text;not null"`
	TranslatedText      string    `gorm:"column:translated_text;type:text;not null"`
	ProviderName        string    `gorm:"column:provider_name;type:text;not null"`
	ModelName           *string   `gorm:"column:model_name;type:text"`
	RunID               *string   `gorm:"column:run_id;type:text"`
	BatchIndex          *int      `gorm:"column:batch_index;type:integer"`
	CreatedAt           time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (ReviewTranslation) TableName() string { return "staylens.review_translations" }

func autoMigrateModels() []any {
	return []any{
		&TranslationRun{},
		&ReviewTranslation{},
	}
}
