package repos

import (
	"gorm.io/gorm"

	"github.com/tickhubhq/tickhub-backend/internal/data/repos/linkrules"
	"github.com/tickhubhq/tickhub-backend/internal/data/repos/records"
	"github.com/tickhubhq/tickhub-backend/internal/data/repos/syncstate"
	"github.com/tickhubhq/tickhub-backend/internal/pkg/logger"
)

// Bundle wires every repo against one DB handle.
type Bundle struct {
	Records       records.RecordRepo
	CustomColumns records.CustomColumnRepo
	FieldMappings linkrules.FieldMappingRepo
	RecordLinks   linkrules.RecordLinkRepo
	Integrations  syncstate.IntegrationRepo
	SyncLogs      syncstate.SyncLogRepo
}

func New(db *gorm.DB, baseLog *logger.Logger) *Bundle {
	return &Bundle{
		Records:       records.NewRecordRepo(db, baseLog),
		CustomColumns: records.NewCustomColumnRepo(db, baseLog),
		FieldMappings: linkrules.NewFieldMappingRepo(db, baseLog),
		RecordLinks:   linkrules.NewRecordLinkRepo(db, baseLog),
		Integrations:  syncstate.NewIntegrationRepo(db, baseLog),
		SyncLogs:      syncstate.NewSyncLogRepo(db, baseLog),
	}
}
