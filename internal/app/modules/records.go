package modules

import (
	"context"

	"github.com/riverqueue/river"

	"workdesk.io/workdesk/internal/api/handlers"
	"workdesk.io/workdesk/internal/repository"
)

// RecordsModule owns the record-keeping repositories: users, tasks,
// meetings, categories, documents and reports.
type RecordsModule struct {
	Users      *repository.UserRepo
	Tasks      *repository.TaskRepo
	Meetings   *repository.MeetingRepo
	Categories *repository.CategoryRepo
	Documents  *repository.DocumentRepo
	Reports    *repository.ReportRepo
}

// NewRecordsModule wires the record repositories over the shared pool.
func NewRecordsModule(infra *Infrastructure) *RecordsModule {
	return &RecordsModule{
		Users:      repository.NewUserRepo(infra.Pool),
		Tasks:      repository.NewTaskRepo(infra.Pool),
		Meetings:   repository.NewMeetingRepo(infra.Pool),
		Categories: repository.NewCategoryRepo(infra.Pool),
		Documents:  repository.NewDocumentRepo(infra.Pool),
		Reports:    repository.NewReportRepo(infra.Pool),
	}
}

// Name identifies the module.
func (m *RecordsModule) Name() string { return "records" }

// ContributeServerDeps injects the repositories into the HTTP server.
func (m *RecordsModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	deps.Users = m.Users
	deps.Tasks = m.Tasks
	deps.Meetings = m.Meetings
	deps.Categories = m.Categories
	deps.Documents = m.Documents
	deps.Reports = m.Reports
}

// RegisterWorkers registers nothing; records have no background jobs.
func (m *RecordsModule) RegisterWorkers(*river.Workers) {}

// Shutdown has nothing to release.
func (m *RecordsModule) Shutdown(context.Context) error { return nil }
