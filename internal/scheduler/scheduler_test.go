package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verlyx/hub/internal/clock"
	"github.com/verlyx/hub/internal/events"
	"github.com/verlyx/hub/internal/migration"
	notificationdomain "github.com/verlyx/hub/internal/notification/domain"
	notificationrepository "github.com/verlyx/hub/internal/notification/repository"
	notificationservice "github.com/verlyx/hub/internal/notification/service"
	paymentdomain "github.com/verlyx/hub/internal/payment/domain"
	"github.com/verlyx/hub/internal/ratelimit"
	taskdomain "github.com/verlyx/hub/internal/task/domain"
	"github.com/verlyx/hub/pkg/db"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	sched    *Scheduler
	db       *gorm.DB
	clock    *clock.FakeClock
	recorder *events.Recorder
	node     *snowflake.Node
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	clk := clock.NewFakeClock(testNow)
	recorder := &events.Recorder{}
	log := zaptest.NewLogger(t)
	sched, err := New(Params{
		DB:     conn,
		Log:    log,
		GenID:  node,
		Clock:  clk,
		Locker: ratelimit.NewMemoryLocker(clk),
		Notifications: notificationservice.New(notificationservice.Params{
			DB:        conn,
			Log:       log,
			GenID:     node,
			Repo:      notificationrepository.Provide(),
			Publisher: recorder,
			Clock:     clk,
		}),
		Config: cfg,
	})
	require.NoError(t, err)

	return &fixture{sched: sched, db: conn, clock: clk, recorder: recorder, node: node}
}

func (f *fixture) insertLink(t *testing.T, orderID, status string, expiresAt time.Time) {
	t.Helper()
	require.NoError(t, f.db.Create(&paymentdomain.PaymentLink{
		ID:          f.node.Generate(),
		OrderID:     orderID,
		Amount:      250,
		Currency:    "USD",
		Country:     "UY",
		Description: "Consulting",
		Status:      status,
		PaymentURL:  "https://pay.verlyx.com/" + orderID,
		ExpiresAt:   expiresAt,
		CreatedAt:   testNow.Add(-48 * time.Hour),
		UpdatedAt:   testNow.Add(-48 * time.Hour),
	}).Error)
}

func (f *fixture) linkStatus(t *testing.T, orderID string) string {
	t.Helper()
	var link paymentdomain.PaymentLink
	require.NoError(t, f.db.Where("order_id = ?", orderID).First(&link).Error)
	return link.Status
}

func (f *fixture) insertTask(t *testing.T, title, status string, assignee *snowflake.ID, due *time.Time) snowflake.ID {
	t.Helper()
	task := &taskdomain.Task{
		ID:          f.node.Generate(),
		MyCompanyID: 77,
		Title:       title,
		Status:      status,
		Priority:    taskdomain.PriorityMedium,
		AssignedTo:  assignee,
		DueDate:     due,
		CreatedAt:   testNow.Add(-72 * time.Hour),
		UpdatedAt:   testNow.Add(-72 * time.Hour),
	}
	require.NoError(t, f.db.Create(task).Error)
	return task.ID
}

func TestExpirePaymentLinksJob(t *testing.T) {
	f := newFixture(t, Config{})

	f.insertLink(t, "VLX-old", paymentdomain.StatusPending, testNow.Add(-time.Hour))
	f.insertLink(t, "VLX-fresh", paymentdomain.StatusPending, testNow.Add(time.Hour))
	f.insertLink(t, "VLX-paid", paymentdomain.StatusPaid, testNow.Add(-time.Hour))

	require.NoError(t, f.sched.RunOnce(context.Background()))

	assert.Equal(t, paymentdomain.StatusExpired, f.linkStatus(t, "VLX-old"))
	assert.Equal(t, paymentdomain.StatusPending, f.linkStatus(t, "VLX-fresh"))
	assert.Equal(t, paymentdomain.StatusPaid, f.linkStatus(t, "VLX-paid"))
}

func TestOverdueTaskRemindersJob(t *testing.T) {
	f := newFixture(t, Config{EnabledJobs: []string{JobOverdueTasks}})

	assignee := snowflake.ID(501)
	past := testNow.Add(-24 * time.Hour)
	future := testNow.Add(24 * time.Hour)

	overdueID := f.insertTask(t, "Send proposal", taskdomain.StatusInProgress, &assignee, &past)
	f.insertTask(t, "Already shipped", taskdomain.StatusDone, &assignee, &past)
	f.insertTask(t, "Not yet due", taskdomain.StatusTodo, &assignee, &future)
	f.insertTask(t, "Nobody owns this", taskdomain.StatusTodo, nil, &past)

	require.NoError(t, f.sched.RunOnce(context.Background()))

	var notifications []notificationdomain.Notification
	require.NoError(t, f.db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	n := notifications[0]
	assert.Equal(t, assignee, n.UserID)
	assert.Equal(t, notificationdomain.TypeDeadline, n.Type)
	require.NotNil(t, n.RelatedID)
	assert.Equal(t, overdueID.String(), *n.RelatedID)
	assert.Contains(t, n.Message, "Send proposal")

	published := f.recorder.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.SubjectNotificationCreated, published[0].Subject)

	// A second pass must not remind again.
	f.clock.Advance(time.Hour)
	require.NoError(t, f.sched.RunOnce(context.Background()))

	var count int64
	require.NoError(t, f.db.Model(&notificationdomain.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOverdueRemindersPageThroughAlreadyNotifiedTasks(t *testing.T) {
	f := newFixture(t, Config{EnabledJobs: []string{JobOverdueTasks}, BatchSize: 2})

	assignee := snowflake.ID(502)
	past := testNow.Add(-2 * time.Hour)
	for _, title := range []string{"one", "two", "three", "four", "five"} {
		f.insertTask(t, title, taskdomain.StatusTodo, &assignee, &past)
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, f.sched.RunOnce(context.Background()))
	}

	var count int64
	require.NoError(t, f.db.Model(&notificationdomain.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestOverdueRemindersNeedNotificationService(t *testing.T) {
	f := newFixture(t, Config{EnabledJobs: []string{JobOverdueTasks}})
	f.sched.notifications = nil

	assignee := snowflake.ID(503)
	past := testNow.Add(-time.Hour)
	f.insertTask(t, "Unsent", taskdomain.StatusTodo, &assignee, &past)

	require.NoError(t, f.sched.RunOnce(context.Background()))

	var count int64
	require.NoError(t, f.db.Model(&notificationdomain.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.recorder.Events())
}

func TestRunJobSkipsWhenLeaseIsHeld(t *testing.T) {
	f := newFixture(t, Config{EnabledJobs: []string{JobExpirePaymentLinks}})
	f.insertLink(t, "VLX-held", paymentdomain.StatusPending, testNow.Add(-time.Hour))

	_, ok, err := f.sched.locker.TryLock(context.Background(), lockKeyPrefix+JobExpirePaymentLinks, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, f.sched.RunOnce(context.Background()))
	assert.Equal(t, paymentdomain.StatusPending, f.linkStatus(t, "VLX-held"))

	f.clock.Advance(2 * time.Minute)
	require.NoError(t, f.sched.RunOnce(context.Background()))
	assert.Equal(t, paymentdomain.StatusExpired, f.linkStatus(t, "VLX-held"))
}

func TestRunJobTimeoutIsNotAnError(t *testing.T) {
	f := newFixture(t, Config{JobTimeout: 5 * time.Millisecond})

	err := f.sched.runJob(context.Background(), "slow", func(ctx context.Context, _ *jobRun) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.NoError(t, err)
}

func TestIsJobEnabled(t *testing.T) {
	s := &Scheduler{cfg: Config{EnabledJobs: []string{" Expire_Payment_Links "}}}
	assert.True(t, s.isJobEnabled(JobExpirePaymentLinks))
	assert.False(t, s.isJobEnabled(JobOverdueTasks))

	s.cfg.EnabledJobs = nil
	assert.True(t, s.isJobEnabled(JobOverdueTasks))
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
