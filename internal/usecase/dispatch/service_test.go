package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kudos-dispatch/internal/domain/entity"
	"kudos-dispatch/internal/usecase/render"
)

// mockNotificationRepo records finalization calls for assertions.
type mockNotificationRepo struct {
	claimFunc      func(ctx context.Context, batchSize int) ([]*entity.NotificationRecord, error)
	markSentFunc   func(ctx context.Context, id string, sentAt time.Time) (bool, error)
	markFailedFunc func(ctx context.Context, id string, errMsg string) (bool, error)

	sentIDs    []string
	failedIDs  []string
	failedMsgs map[string]string
}

func (m *mockNotificationRepo) ClaimPending(ctx context.Context, batchSize int) ([]*entity.NotificationRecord, error) {
	return m.claimFunc(ctx, batchSize)
}

func (m *mockNotificationRepo) MarkSent(ctx context.Context, id string, sentAt time.Time) (bool, error) {
	m.sentIDs = append(m.sentIDs, id)
	if m.markSentFunc != nil {
		return m.markSentFunc(ctx, id, sentAt)
	}
	return true, nil
}

func (m *mockNotificationRepo) MarkFailed(ctx context.Context, id string, errMsg string) (bool, error) {
	m.failedIDs = append(m.failedIDs, id)
	if m.failedMsgs == nil {
		m.failedMsgs = make(map[string]string)
	}
	m.failedMsgs[id] = errMsg
	if m.markFailedFunc != nil {
		return m.markFailedFunc(ctx, id, errMsg)
	}
	return true, nil
}

func (m *mockNotificationRepo) ScheduleWeeklyReminders(ctx context.Context) error {
	return nil
}

type mockUserRepo struct {
	getUserFunc     func(ctx context.Context, userID string) (*entity.UserContext, error)
	getSettingsFunc func(ctx context.Context, userID string) (*entity.Settings, error)
}

func (m *mockUserRepo) GetUser(ctx context.Context, userID string) (*entity.UserContext, error) {
	return m.getUserFunc(ctx, userID)
}

func (m *mockUserRepo) GetSettings(ctx context.Context, userID string) (*entity.Settings, error) {
	return m.getSettingsFunc(ctx, userID)
}

type mockKudosRepo struct {
	getFunc func(ctx context.Context, kudosID string) (*entity.KudosContext, error)
	calls   int
}

func (m *mockKudosRepo) GetKudosWithContext(ctx context.Context, kudosID string) (*entity.KudosContext, error) {
	m.calls++
	return m.getFunc(ctx, kudosID)
}

type mockStatsProvider struct {
	statsFunc func(ctx context.Context, userID string) (*entity.WeeklyStats, error)
	calls     int
}

func (m *mockStatsProvider) WeeklyStats(ctx context.Context, userID string) (*entity.WeeklyStats, error) {
	m.calls++
	return m.statsFunc(ctx, userID)
}

type mockSlackSender struct {
	sendFunc func(ctx context.Context, msg *render.SlackMessage) error
	sent     []*render.SlackMessage
}

func (m *mockSlackSender) Send(ctx context.Context, msg *render.SlackMessage) error {
	m.sent = append(m.sent, msg)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, msg)
	}
	return nil
}

type mockEmailSender struct {
	sendFunc   func(ctx context.Context, to string, content *render.EmailContent) error
	recipients []string
}

func (m *mockEmailSender) Send(ctx context.Context, to string, content *render.EmailContent) error {
	m.recipients = append(m.recipients, to)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, to, content)
	}
	return nil
}

// fakeSleeper captures pacing sleeps instead of waiting.
type fakeSleeper struct {
	slept []time.Duration
}

func (f *fakeSleeper) sleep(_ context.Context, d time.Duration) error {
	f.slept = append(f.slept, d)
	return nil
}

func strPtr(s string) *string { return &s }

func testUser() *entity.UserContext {
	return &entity.UserContext{
		ID:    "user-1",
		Name:  "Alice",
		Email: "alice@example.com",
	}
}

func testSettings(slackUserID *string) *entity.Settings {
	return &entity.Settings{
		UserID:        "user-1",
		SlackUserID:   slackUserID,
		NotifyByEmail: true,
		NotifyBySlack: slackUserID != nil,
	}
}

func testKudos() *entity.KudosContext {
	return &entity.KudosContext{
		ID:           "kudos-1",
		GiverID:      "user-2",
		GiverName:    "Bob",
		CategoryName: "Teamwork",
		Message:      strPtr("Great job on the release!"),
		Recipients:   []entity.Recipient{{ID: "user-1", Name: "Alice"}},
	}
}

func emailRecord(id string) *entity.NotificationRecord {
	return &entity.NotificationRecord{
		ID:      id,
		Type:    entity.TypeKudosReceived,
		Channel: entity.ChannelEmail,
		UserID:  "user-1",
		KudosID: strPtr("kudos-1"),
		Status:  entity.StatusProcessing,
	}
}

func slackRecord(id string) *entity.NotificationRecord {
	return &entity.NotificationRecord{
		ID:      id,
		Type:    entity.TypeKudosReceived,
		Channel: entity.ChannelSlack,
		UserID:  "user-1",
		KudosID: strPtr("kudos-1"),
		Status:  entity.StatusProcessing,
	}
}

// newTestService wires a service with happy-path mocks; tests override the
// pieces they care about before calling ProcessBatch.
func newTestService(records []*entity.NotificationRecord) (*service, *mockNotificationRepo, *mockSlackSender, *mockEmailSender, *fakeSleeper) {
	notifRepo := &mockNotificationRepo{
		claimFunc: func(_ context.Context, _ int) ([]*entity.NotificationRecord, error) {
			return records, nil
		},
	}
	userRepo := &mockUserRepo{
		getUserFunc: func(_ context.Context, _ string) (*entity.UserContext, error) {
			return testUser(), nil
		},
		getSettingsFunc: func(_ context.Context, _ string) (*entity.Settings, error) {
			return testSettings(strPtr("U12345")), nil
		},
	}
	kudosRepo := &mockKudosRepo{
		getFunc: func(_ context.Context, _ string) (*entity.KudosContext, error) {
			return testKudos(), nil
		},
	}
	statsProvider := &mockStatsProvider{
		statsFunc: func(_ context.Context, _ string) (*entity.WeeklyStats, error) {
			return &entity.WeeklyStats{
				KudosReceived: 3,
				KudosGiven:    1,
				Rank:          2,
				TotalPoints:   12,
				Leader:        "Bob (20 points)",
				TopCategory:   "Teamwork",
			}, nil
		},
	}
	slack := &mockSlackSender{}
	email := &mockEmailSender{}
	sleeper := &fakeSleeper{}

	svc := NewService(notifRepo, userRepo, kudosRepo, statsProvider, slack, email, Config{
		BatchSize:   10,
		AppURL:      "https://kudos.example.com",
		EmailPacing: time.Second,
	}).(*service)
	svc.sleep = sleeper.sleep
	svc.now = func() time.Time { return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) }

	return svc, notifRepo, slack, email, sleeper
}

func TestProcessBatch_EmptyClaim(t *testing.T) {
	svc, _, slack, email, _ := newTestService(nil)

	summary, err := svc.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
	assert.Empty(t, slack.sent)
	assert.Empty(t, email.recipients)
}

func TestProcessBatch_ClaimFailureIsFatal(t *testing.T) {
	svc, notifRepo, _, _, _ := newTestService(nil)
	notifRepo.claimFunc = func(_ context.Context, _ int) ([]*entity.NotificationRecord, error) {
		return nil, errors.New("connection refused")
	}

	_, err := svc.ProcessBatch(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "claim pending notifications")
	assert.Empty(t, notifRepo.sentIDs)
	assert.Empty(t, notifRepo.failedIDs)
}

func TestProcessBatch_FailureDoesNotBlockOthers(t *testing.T) {
	records := []*entity.NotificationRecord{
		emailRecord("n1"),
		emailRecord("n2"),
		emailRecord("n3"),
	}
	svc, notifRepo, _, email, _ := newTestService(records)

	failing := errors.New("mailbox unavailable")
	email.sendFunc = func(_ context.Context, _ string, _ *render.EmailContent) error {
		if len(email.recipients) == 2 {
			return failing
		}
		return nil
	}

	summary, err := svc.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 3, Sent: 2, Failed: 1}, summary)
	assert.Equal(t, []string{"n1", "n3"}, notifRepo.sentIDs)
	assert.Equal(t, []string{"n2"}, notifRepo.failedIDs)
	assert.Contains(t, notifRepo.failedMsgs["n2"], "mailbox unavailable")
}

func TestProcessBatch_UnsupportedTypeFails(t *testing.T) {
	record := emailRecord("n1")
	record.Type = entity.NotificationType("unknown_type")
	svc, notifRepo, _, email, _ := newTestService([]*entity.NotificationRecord{record})

	summary, err := svc.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Sent: 0, Failed: 1}, summary)
	assert.Empty(t, email.recipients)
	require.Equal(t, []string{"n1"}, notifRepo.failedIDs)
	assert.Contains(t, notifRepo.failedMsgs["n1"], "unsupported notification type")
}

func TestProcessBatch_UnsupportedChannelFails(t *testing.T) {
	record := emailRecord("n1")
	record.Channel = entity.NotificationChannel("sms")
	svc, notifRepo, slack, email, _ := newTestService([]*entity.NotificationRecord{record})

	summary, err := svc.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Sent: 0, Failed: 1}, summary)
	assert.Empty(t, email.recipients)
	assert.Empty(t, slack.sent)
	require.Equal(t, []string{"n1"}, notifRepo.failedIDs)
	assert.Contains(t, notifRepo.failedMsgs["n1"], "unsupported channel")
}

func TestProcessBatch_OversizedMessageFails(t *testing.T) {
	record := emailRecord("n1")
	record.Message = strPtr(strings.Repeat("a", entity.MaxMessageRunes+1))
	svc, notifRepo, _, email, _ := newTestService([]*entity.NotificationRecord{record})

	summary, err := svc.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Sent: 0, Failed: 1}, summary)
	assert.Empty(t, email.recipients)
	assert.Contains(t, notifRepo.failedMsgs["n1"], "message is too long")
}

func TestProcessBatch_MissingSlackIdentityFails(t *testing.T) {
	svc, notifRepo, slack, _, _ := newTestService([]*entity.NotificationRecord{slackRecord("n1")})
	svc.users = &mockUserRepo{
		getUserFunc: func(_ context.Context, _ string) (*entity.UserContext, error) {
			return testUser(), nil
		},
		getSettingsFunc: func(_ context.Context, _ string) (*entity.Settings, error) {
			return testSettings(nil), nil
		},
	}

	summary, err := svc.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Sent: 0, Failed: 1}, summary)
	assert.Empty(t, slack.sent)
	assert.Contains(t, notifRepo.failedMsgs["n1"], "no Slack user ID found for user")
}

func TestProcessBatch_EmailPacing(t *testing.T) {
	// Email, slack, email, email: pacing applies only before the second
	// and third email sends, never before the first or before slack.
	records := []*entity.NotificationRecord{
		emailRecord("n1"),
		slackRecord("n2"),
		emailRecord("n3"),
		emailRecord("n4"),
	}
	svc, notifRepo, slack, email, sleeper := newTestService(records)

	summary, err := svc.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 4, Sent: 4, Failed: 0}, summary)
	assert.Len(t, email.recipients, 3)
	assert.Len(t, slack.sent, 1)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sleeper.slept)
	assert.Equal(t, []string{"n1", "n2", "n3", "n4"}, notifRepo.sentIDs)
}

func TestProcessBatch_PacingOnlyAfterSuccessfulSend(t *testing.T) {
	records := []*entity.NotificationRecord{
		emailRecord("n1"),
		emailRecord("n2"),
	}
	svc, _, _, email, sleeper := newTestService(records)

	// First email send fails, so no pacing delay applies before the next.
	email.sendFunc = func(_ context.Context, _ string, _ *render.EmailContent) error {
		if len(email.recipients) == 1 {
			return errors.New("temporary failure")
		}
		return nil
	}

	summary, err := svc.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 2, Sent: 1, Failed: 1}, summary)
	assert.Empty(t, sleeper.slept)
}

func TestProcessBatch_WeeklyReminderLoadsStats(t *testing.T) {
	record := &entity.NotificationRecord{
		ID:      "n1",
		Type:    entity.TypeWeeklyReminder,
		Channel: entity.ChannelSlack,
		UserID:  "user-1",
		Status:  entity.StatusProcessing,
	}
	svc, _, slack, _, _ := newTestService([]*entity.NotificationRecord{record})
	statsProvider := svc.stats.(*mockStatsProvider)
	kudosRepo := svc.kudos.(*mockKudosRepo)

	summary, err := svc.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Sent: 1, Failed: 0}, summary)
	assert.Equal(t, 1, statsProvider.calls)
	assert.Equal(t, 0, kudosRepo.calls, "no kudos lookup without a kudos reference")
	require.Len(t, slack.sent, 1)
}

func TestProcessBatch_StatsFailureFailsRecord(t *testing.T) {
	record := &entity.NotificationRecord{
		ID:      "n1",
		Type:    entity.TypeWeeklyReminder,
		Channel: entity.ChannelEmail,
		UserID:  "user-1",
		Status:  entity.StatusProcessing,
	}
	svc, notifRepo, _, email, _ := newTestService([]*entity.NotificationRecord{record})
	svc.stats = &mockStatsProvider{
		statsFunc: func(_ context.Context, _ string) (*entity.WeeklyStats, error) {
			return nil, errors.New("view query timed out")
		},
	}

	summary, err := svc.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Sent: 0, Failed: 1}, summary)
	assert.Empty(t, email.recipients)
	assert.Contains(t, notifRepo.failedMsgs["n1"], "load weekly stats")
}

func TestProcessBatch_UserNotFoundFailsRecord(t *testing.T) {
	svc, notifRepo, _, _, _ := newTestService([]*entity.NotificationRecord{emailRecord("n1")})
	svc.users = &mockUserRepo{
		getUserFunc: func(_ context.Context, _ string) (*entity.UserContext, error) {
			return nil, entity.ErrNotFound
		},
		getSettingsFunc: func(_ context.Context, _ string) (*entity.Settings, error) {
			return testSettings(nil), nil
		},
	}

	summary, err := svc.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Sent: 0, Failed: 1}, summary)
	assert.Contains(t, notifRepo.failedMsgs["n1"], "load user")
}

func TestProcessBatch_FinalizeGuardMissIsNoOp(t *testing.T) {
	svc, notifRepo, _, _, _ := newTestService([]*entity.NotificationRecord{emailRecord("n1")})
	notifRepo.markSentFunc = func(_ context.Context, _ string, _ time.Time) (bool, error) {
		return false, nil // record reclaimed by another actor
	}

	summary, err := svc.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Sent: 1, Failed: 0}, summary)
	assert.Equal(t, []string{"n1"}, notifRepo.sentIDs)
	assert.Empty(t, notifRepo.failedIDs)
}

func TestProcessBatch_ClaimUsesConfiguredBatchSize(t *testing.T) {
	svc, notifRepo, _, _, _ := newTestService(nil)
	var gotBatchSize int
	notifRepo.claimFunc = func(_ context.Context, batchSize int) ([]*entity.NotificationRecord, error) {
		gotBatchSize = batchSize
		return nil, nil
	}

	_, err := svc.ProcessBatch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 10, gotBatchSize)
}
