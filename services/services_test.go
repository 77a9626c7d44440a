package services_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"lostluggage/models"
	"lostluggage/services"
	"lostluggage/utils"
)

type notification struct {
	to     models.User
	report models.LostReport
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *recordingNotifier) ReportChanged(_ context.Context, to models.User, report models.LostReport) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{to: to, report: report})
	return n.err
}

func newService(t *testing.T) (*services.Service, *recordingNotifier) {
	t.Helper()
	db, err := utils.OpenDB(context.Background(), filepath.Join(t.TempDir(), "luggage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	n := &recordingNotifier{}
	return services.New(db, n, zaptest.NewLogger(t)), n
}

func sampleLost() services.LostReportInput {
	return services.LostReportInput{
		FlightNo:    " ai101 ",
		Description: "Red bag with a yellow ribbon",
		LastSeen:    "Gate 4",
		DateLost:    "2024-05-01",
	}
}

func sampleFound() services.FoundReportInput {
	return services.FoundReportInput{
		FinderName:  "Bob",
		Contact:     "bob@example.com",
		Description: "Red bag, yellow ribbon",
		PlaceFound:  "Carousel 2",
		DateFound:   "2024-05-02",
	}
}

func TestRegister(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Alice ", "Alice@Example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, models.RolePassenger, u.Role)
	assert.NotEqual(t, "pw", u.PasswordHash)

	_, err = svc.Register(ctx, "Other", "alice@example.com", "pw2")
	assert.ErrorIs(t, err, services.ErrDuplicateEmail)

	n, err := svc.Users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		field    string
	}{
		{"empty name", "   ", "a@example.com", "pw", "name"},
		{"long name", strings.Repeat("n", 256), "a@example.com", "pw", "name"},
		{"bad email", "A", "not-an-email", "pw", "email"},
		{"empty password", "A", "a@example.com", "", "password"},
		{"long password", "A", "a@example.com", strings.Repeat("p", 73), "password"},
	}

	svc, _ := newService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)
			var verr *services.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "pw")
	require.NoError(t, err)

	u, err := svc.Login(ctx, "ALICE@example.com ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	for _, tc := range []struct{ email, password string }{
		{"alice@example.com", "wrong"},
		{"nobody@example.com", "pw"},
		{"", "pw"},
		{"alice@example.com", ""},
	} {
		_, err := svc.Login(ctx, tc.email, tc.password)
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	}
}

func TestCreateAdmin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, "Root", "root@example.com", "weak")
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "password", verr.Field)

	admin, err := svc.CreateAdmin(ctx, "Root", "root@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	created, err := svc.EnsureAdmin(ctx, "Root", "root@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.EnsureAdmin(ctx, "Desk", "desk@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestFileAndListLostReports(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	alice, err := svc.Register(ctx, "Alice", "alice@example.com", "pw")
	require.NoError(t, err)
	bob, err := svc.Register(ctx, "Bob", "bob@example.com", "pw")
	require.NoError(t, err)

	lr, err := svc.FileLostReport(ctx, alice.ID, sampleLost())
	require.NoError(t, err)
	assert.Equal(t, "AI101", lr.FlightNo)
	assert.Equal(t, models.StatusPending, lr.Status)
	assert.Empty(t, lr.Remarks)

	_, err = svc.FileLostReport(ctx, bob.ID, sampleLost())
	require.NoError(t, err)

	mine, err := svc.ListMyReports(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, lr.ID, mine[0].ID)
	assert.Equal(t, models.StatusPending, mine[0].Status)

	got, err := svc.TrackReport(ctx, lr.ID)
	require.NoError(t, err)
	assert.Equal(t, lr, got)

	_, err = svc.TrackReport(ctx, 999)
	assert.ErrorIs(t, err, services.ErrReportNotFound)

	views, err := svc.ListLostReportsWithReporter(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Alice", views[0].ReporterName)
}

func TestFileLostReport_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	alice, err := svc.Register(ctx, "Alice", "alice@example.com", "pw")
	require.NoError(t, err)

	in := sampleLost()
	in.Description = "  "
	_, err = svc.FileLostReport(ctx, alice.ID, in)
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "description", verr.Field)

	in = sampleLost()
	in.FlightNo = ""
	_, err = svc.FileLostReport(ctx, alice.ID, in)
	assert.NoError(t, err, "flight number is optional")

	in = sampleLost()
	in.FlightNo = strings.Repeat("X", 256)
	_, err = svc.FileLostReport(ctx, alice.ID, in)
	assert.Error(t, err)

	all, err := svc.ListLostReports(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateReportStatus(t *testing.T) {
	svc, notifier := newService(t)
	ctx := context.Background()

	alice, err := svc.Register(ctx, "Alice", "alice@example.com", "pw")
	require.NoError(t, err)
	lr, err := svc.FileLostReport(ctx, alice.ID, sampleLost())
	require.NoError(t, err)

	first, err := svc.UpdateReportStatus(ctx, lr.ID, "In Progress", "  checking Gate 4 ")
	require.NoError(t, err)
	second, err := svc.UpdateReportStatus(ctx, lr.ID, "In Progress", "checking Gate 4")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "checking Gate 4", second.Remarks)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "alice@example.com", notifier.sent[0].to.Email)
	assert.Equal(t, "In Progress", notifier.sent[0].report.Status)

	_, err = svc.UpdateReportStatus(ctx, 999, "Closed", "")
	assert.ErrorIs(t, err, services.ErrReportNotFound)

	_, err = svc.UpdateReportStatus(ctx, lr.ID, " ", "")
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "status", verr.Field)

	_, err = svc.UpdateReportStatus(ctx, lr.ID, "Closed", strings.Repeat("r", 2001))
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "remarks", verr.Field)
}

func TestUpdateReportStatus_NotifierFailureIsNotFatal(t *testing.T) {
	svc, notifier := newService(t)
	notifier.err = errors.New("mail down")
	ctx := context.Background()

	alice, err := svc.Register(ctx, "Alice", "alice@example.com", "pw")
	require.NoError(t, err)
	lr, err := svc.FileLostReport(ctx, alice.ID, sampleLost())
	require.NoError(t, err)

	got, err := svc.UpdateReportStatus(ctx, lr.ID, "Closed", "")
	require.NoError(t, err)
	assert.Equal(t, "Closed", got.Status)
}

func TestFoundReports(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	fr, err := svc.FileFoundReport(ctx, sampleFound())
	require.NoError(t, err)
	assert.NotZero(t, fr.ID)

	in := sampleFound()
	in.Contact = ""
	_, err = svc.FileFoundReport(ctx, in)
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "contact", verr.Field)

	list, err := svc.ListFoundReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.FoundReport{*fr}, list)

	_, err = svc.GetFoundReport(ctx, 999)
	assert.ErrorIs(t, err, services.ErrFoundReportNotFound)
}

func TestMatchFoundToLost(t *testing.T) {
	svc, notifier := newService(t)
	ctx := context.Background()

	alice, err := svc.Register(ctx, "Alice", "alice@example.com", "pw")
	require.NoError(t, err)
	lr, err := svc.FileLostReport(ctx, alice.ID, sampleLost())
	require.NoError(t, err)
	fr, err := svc.FileFoundReport(ctx, sampleFound())
	require.NoError(t, err)

	pending, err := svc.PendingLostReports(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = svc.MatchFoundToLost(ctx, fr.ID+10, lr.ID)
	assert.ErrorIs(t, err, services.ErrFoundReportNotFound)
	_, err = svc.MatchFoundToLost(ctx, fr.ID, lr.ID+10)
	assert.ErrorIs(t, err, services.ErrReportNotFound)

	matched, err := svc.MatchFoundToLost(ctx, fr.ID, lr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFound, matched.Status)
	assert.Contains(t, matched.Remarks, models.MatchRemarks(fr.ID, lr.ID))

	tracked, err := svc.TrackReport(ctx, lr.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFound, tracked.Status)

	stillThere, err := svc.GetFoundReport(ctx, fr.ID)
	require.NoError(t, err)
	assert.Equal(t, fr, stillThere)

	_, err = svc.MatchFoundToLost(ctx, fr.ID, lr.ID)
	assert.ErrorIs(t, err, services.ErrReportNotPending)

	pending, err = svc.PendingLostReports(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, lr.ID, notifier.sent[0].report.ID)
}

func TestMatchRemarksNameBothReports(t *testing.T) {
	remarks := models.MatchRemarks(5, 7)
	assert.Contains(t, remarks, "5")
	assert.Contains(t, remarks, "7")
}
