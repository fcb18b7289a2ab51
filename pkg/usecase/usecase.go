package usecase

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/interfaces"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/domain/model"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/draft"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/network"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/notification"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/offline"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/push"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/async"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

// DefaultMaxTeams caps how many teams one generation may create
const DefaultMaxTeams = 8

// UseCases is the application context. It owns the offline queue, the network monitor and
// the notification center; every other component reaches them through it.
type UseCases struct {
	repo          interfaces.Repository
	calendar      *model.Calendar
	queue         *offline.Queue
	network       *network.Monitor
	notifications *notification.Center
	push          interfaces.PushSender
	drafts        interfaces.DraftStore
	maxTeams      int
	admins        map[string]struct{}
	baseURL       string
	shuffle       model.Shuffler
	now           func() time.Time

	Event    *EventUseCase
	Activity *ActivityUseCase
	Sync     *SyncUseCase
	Xp       *XpUseCase
	Auth     AuthUseCaseInterface
}

type Option func(*UseCases)

// WithCalendar sets the timezone used for event dates
func WithCalendar(cal *model.Calendar) Option {
	return func(uc *UseCases) {
		uc.calendar = cal
	}
}

// WithQueue sets the offline action queue. Build it with PermanentReplayErrors so
// actions that can never succeed are not retried.
func WithQueue(q *offline.Queue) Option {
	return func(uc *UseCases) {
		uc.queue = q
	}
}

// WithNetworkMonitor sets the connectivity monitor
func WithNetworkMonitor(m *network.Monitor) Option {
	return func(uc *UseCases) {
		uc.network = m
	}
}

// WithNotificationCenter sets the notification center
func WithNotificationCenter(c *notification.Center) Option {
	return func(uc *UseCases) {
		uc.notifications = c
	}
}

// WithPush sets the push backend
func WithPush(p interfaces.PushSender) Option {
	return func(uc *UseCases) {
		uc.push = p
	}
}

// WithDraftStore sets the draft store
func WithDraftStore(s interfaces.DraftStore) Option {
	return func(uc *UseCases) {
		uc.drafts = s
	}
}

// WithMaxTeams caps team generation. Zero or less disables the cap.
func WithMaxTeams(n int) Option {
	return func(uc *UseCases) {
		uc.maxTeams = n
	}
}

// WithAdmins sets the users allowed to approve and reject event requests
func WithAdmins(userIDs ...string) Option {
	return func(uc *UseCases) {
		for _, id := range userIDs {
			if id != "" {
				uc.admins[id] = struct{}{}
			}
		}
	}
}

// WithBaseURL sets the frontend URL used for links in push messages
func WithBaseURL(url string) Option {
	return func(uc *UseCases) {
		uc.baseURL = url
	}
}

// WithShuffler overrides the permutation used by team generation
func WithShuffler(s model.Shuffler) Option {
	return func(uc *UseCases) {
		uc.shuffle = s
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

// PermanentReplayErrors lists errors that make a queued action fail for good
func PermanentReplayErrors() []error {
	return []error{
		model.ErrInvalidPayload,
		model.ErrMissingRequiredInput,
		ErrEventNotFound,
		ErrTeamNotFound,
		ErrEventNotOpen,
		ErrNotParticipant,
		ErrOwnTeamRating,
		ErrAccessDenied,
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		maxTeams: DefaultMaxTeams,
		admins:   make(map[string]struct{}),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.calendar == nil {
		uc.calendar = model.DefaultCalendar()
	}
	if uc.queue == nil {
		uc.queue = offline.New(offline.WithPermanentErrors(PermanentReplayErrors()...))
	}
	if uc.network == nil {
		uc.network = network.New()
	}
	if uc.notifications == nil {
		uc.notifications = notification.New()
	}
	if uc.push == nil {
		uc.push = push.Nop{}
	}
	if uc.drafts == nil {
		uc.drafts = draft.NewMemory()
	}
	if uc.shuffle == nil {
		uc.shuffle = rand.Shuffle
	}

	uc.Event = &EventUseCase{app: uc}
	uc.Activity = &ActivityUseCase{app: uc}
	uc.Sync = &SyncUseCase{app: uc}
	uc.Xp = &XpUseCase{app: uc}

	uc.network.OnReconnect(uc.Sync.ReplayQueue)
	uc.network.Subscribe(uc.Sync.announceNetworkChange)

	return uc
}

// Calendar returns the calendar event dates are normalized in
func (uc *UseCases) Calendar() *model.Calendar {
	return uc.calendar
}

// Queue returns the offline action queue
func (uc *UseCases) Queue() *offline.Queue {
	return uc.queue
}

// Network returns the connectivity monitor
func (uc *UseCases) Network() *network.Monitor {
	return uc.network
}

// Notifications returns the notification center
func (uc *UseCases) Notifications() *notification.Center {
	return uc.notifications
}

// Drafts returns the draft store
func (uc *UseCases) Drafts() interfaces.DraftStore {
	return uc.drafts
}

// Close stops background timers and releases the draft store
func (uc *UseCases) Close() error {
	uc.network.Stop()
	return uc.drafts.Close()
}

func (uc *UseCases) isAdmin(userID string) bool {
	_, ok := uc.admins[userID]
	return ok
}

func (uc *UseCases) eventURL(id model.EventID) string {
	if uc.baseURL == "" {
		return ""
	}
	return uc.baseURL + "/events/" + id.String()
}

// sendPush delivers msg in the background; failures are logged and never reach the caller
func (uc *UseCases) sendPush(ctx context.Context, msg *model.PushMessage) {
	if len(msg.TargetUserIDs) == 0 {
		logging.From(ctx).Debug("push skipped, no recipients", "title", msg.Title)
		return
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		return uc.push.Send(ctx, msg)
	})
}
