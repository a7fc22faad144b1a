package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/KasumiMercury/primind-practice-reminder/internal/domain"
)

const (
	remindersKey           = "reminder:records"
	reminderChangesChannel = "reminder:changes"

	maxTxRetries = 3
)

type timeOfDayRecord struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

type filterRecord struct {
	Difficulties   []string `json:"difficulties,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Companies      []string `json:"companies,omitempty"`
	Saved          *bool    `json:"saved,omitempty"`
	Solved         *bool    `json:"solved,omitempty"`
	TopLiked       bool     `json:"top_liked,omitempty"`
	TopInterviewed bool     `json:"top_interviewed,omitempty"`
}

type reminderRecord struct {
	ID         string          `json:"id"`
	Date       timeOfDayRecord `json:"date"`
	RepeatDays []int           `json:"repeat_days"`
	Enabled    bool            `json:"enabled"`
	Filter     *filterRecord   `json:"filter,omitempty"`
}

type reminderRepository struct {
	client *redis.Client
}

func NewReminderRepository(client *redis.Client) domain.ReminderRepository {
	return &reminderRepository{
		client: client,
	}
}

func (r *reminderRepository) Save(ctx context.Context, reminder *domain.Reminder) error {
	if reminder == nil {
		return ErrInvalidReminderData
	}
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}

	data, err := encodeReminder(reminder)
	if err != nil {
		return err
	}

	change, err := encodeChange(domain.ChangeSaved, reminder.ID)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, remindersKey, reminder.ID, data)
	pipe.Publish(ctx, reminderChangesChannel, change)

	_, err = pipe.Exec(ctx)
	return err
}

func (r *reminderRepository) Get(ctx context.Context, id string) (*domain.Reminder, error) {
	data, err := r.client.HGet(ctx, remindersKey, id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrReminderNotFound
		}
		return nil, err
	}

	return decodeReminder(data)
}

func (r *reminderRepository) List(ctx context.Context) ([]*domain.Reminder, error) {
	values, err := r.client.HGetAll(ctx, remindersKey).Result()
	if err != nil {
		return nil, err
	}

	reminders := make([]*domain.Reminder, 0, len(values))
	for id, raw := range values {
		reminder, err := decodeReminder([]byte(raw))
		if err != nil {
			slog.WarnContext(ctx, "skipping undecodable reminder",
				slog.String("reminder_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		reminders = append(reminders, reminder)
	}

	return reminders, nil
}

// deleteReminder publishes the change only when the field was actually removed.
var deleteReminder = redis.NewScript(`
local removed = redis.call("HDEL", KEYS[1], ARGV[1])
if removed > 0 then
	redis.call("PUBLISH", ARGV[2], ARGV[3])
end
return removed
`)

func (r *reminderRepository) Delete(ctx context.Context, id string) error {
	change, err := encodeChange(domain.ChangeDeleted, id)
	if err != nil {
		return err
	}

	removed, err := deleteReminder.Run(ctx, r.client, []string{remindersKey}, id, reminderChangesChannel, change).Int()
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrReminderNotFound
	}
	return nil
}

// Update replaces an existing reminder. It never re-creates one deleted concurrently.
func (r *reminderRepository) Update(ctx context.Context, reminder *domain.Reminder) error {
	if reminder == nil || reminder.ID == "" {
		return ErrInvalidReminderData
	}

	data, err := encodeReminder(reminder)
	if err != nil {
		return err
	}
	change, err := encodeChange(domain.ChangeSaved, reminder.ID)
	if err != nil {
		return err
	}

	txf := func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, remindersKey, reminder.ID).Result()
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrReminderNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, remindersKey, reminder.ID, data)
			pipe.Publish(ctx, reminderChangesChannel, change)
			return nil
		})
		return err
	}

	return r.watch(ctx, txf)
}

func (r *reminderRepository) Toggle(ctx context.Context, id string) (*domain.Reminder, error) {
	var toggled *domain.Reminder

	txf := func(tx *redis.Tx) error {
		data, err := tx.HGet(ctx, remindersKey, id).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.ErrReminderNotFound
			}
			return err
		}

		reminder, err := decodeReminder(data)
		if err != nil {
			return err
		}
		reminder.Enabled = !reminder.Enabled

		encoded, err := encodeReminder(reminder)
		if err != nil {
			return err
		}
		change, err := encodeChange(domain.ChangeSaved, id)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, remindersKey, id, encoded)
			pipe.Publish(ctx, reminderChangesChannel, change)
			return nil
		})
		if err != nil {
			return err
		}

		toggled = reminder
		return nil
	}

	if err := r.watch(ctx, txf); err != nil {
		return nil, err
	}
	return toggled, nil
}

func (r *reminderRepository) DisableAll(ctx context.Context) ([]*domain.Reminder, error) {
	var changed []*domain.Reminder

	txf := func(tx *redis.Tx) error {
		values, err := tx.HGetAll(ctx, remindersKey).Result()
		if err != nil {
			return err
		}

		changed = make([]*domain.Reminder, 0, len(values))
		fields := make([]any, 0, len(values)*2)
		ids := make([]string, 0, len(values))
		for id, raw := range values {
			reminder, err := decodeReminder([]byte(raw))
			if err != nil {
				return fmt.Errorf("reminder %s: %w", id, err)
			}
			if !reminder.Enabled {
				continue
			}
			reminder.Enabled = false

			encoded, err := encodeReminder(reminder)
			if err != nil {
				return err
			}
			fields = append(fields, id, encoded)
			ids = append(ids, id)
			changed = append(changed, reminder)
		}

		if len(changed) == 0 {
			return nil
		}

		change, err := encodeChange(domain.ChangeBulk, ids...)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, remindersKey, fields...)
			pipe.Publish(ctx, reminderChangesChannel, change)
			return nil
		})
		return err
	}

	if err := r.watch(ctx, txf); err != nil {
		return nil, err
	}
	return changed, nil
}

func (r *reminderRepository) Subscribe(ctx context.Context) (<-chan domain.ReminderChange, error) {
	pubsub := r.client.Subscribe(ctx, reminderChangesChannel)

	// Wait for the subscription to be confirmed so no change published after
	// Subscribe returns can be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to reminder changes: %w", err)
	}

	out := make(chan domain.ReminderChange, 16)
	go func() {
		defer close(out)
		defer func() {
			if err := pubsub.Close(); err != nil {
				slog.Debug("failed to close reminder change subscription", slog.String("error", err.Error()))
			}
		}()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var change domain.ReminderChange
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					slog.WarnContext(ctx, "skipping undecodable reminder change",
						slog.String("error", ErrInvalidChangeData.Error()),
					)
					continue
				}

				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// watch runs txf under WATCH on the reminders hash and retries when another client
// wrote in between.
func (r *reminderRepository) watch(ctx context.Context, txf func(tx *redis.Tx) error) error {
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := r.client.Watch(ctx, txf, remindersKey)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}

		slog.DebugContext(ctx, "reminder transaction conflicted, retrying",
			slog.Int("attempt", attempt+1),
		)
	}

	return domain.ErrReminderConflict
}

func encodeReminder(reminder *domain.Reminder) ([]byte, error) {
	record := reminderRecord{
		ID: reminder.ID,
		Date: timeOfDayRecord{
			Hour:   reminder.Time.Hour,
			Minute: reminder.Time.Minute,
		},
		RepeatDays: make([]int, 0, len(reminder.RepeatDays)),
		Enabled:    reminder.Enabled,
	}
	for _, d := range reminder.RepeatDays {
		record.RepeatDays = append(record.RepeatDays, int(d))
	}

	if f := reminder.Filter; f != nil {
		fr := &filterRecord{
			Tags:           f.Tags,
			Companies:      f.Companies,
			Saved:          f.Saved,
			Solved:         f.Solved,
			TopLiked:       f.TopLiked,
			TopInterviewed: f.TopInterviewed,
		}
		for _, d := range f.Difficulties {
			fr.Difficulties = append(fr.Difficulties, string(d))
		}
		record.Filter = fr
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, ErrInvalidReminderData
	}
	return data, nil
}

func decodeReminder(data []byte) (*domain.Reminder, error) {
	var record reminderRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, ErrInvalidReminderData
	}

	reminder := &domain.Reminder{
		ID: record.ID,
		Time: domain.TimeOfDay{
			Hour:   record.Date.Hour,
			Minute: record.Date.Minute,
		},
		RepeatDays: make([]domain.Weekday, 0, len(record.RepeatDays)),
		Enabled:    record.Enabled,
	}
	for _, d := range record.RepeatDays {
		reminder.RepeatDays = append(reminder.RepeatDays, domain.Weekday(d))
	}

	if fr := record.Filter; fr != nil {
		filter := &domain.QuestionFilter{
			Tags:           fr.Tags,
			Companies:      fr.Companies,
			Saved:          fr.Saved,
			Solved:         fr.Solved,
			TopLiked:       fr.TopLiked,
			TopInterviewed: fr.TopInterviewed,
		}
		for _, d := range fr.Difficulties {
			filter.Difficulties = append(filter.Difficulties, domain.Difficulty(d))
		}
		reminder.Filter = filter
	}

	return reminder, nil
}

func encodeChange(kind domain.ChangeKind, ids ...string) ([]byte, error) {
	data, err := json.Marshal(domain.ReminderChange{Kind: kind, IDs: ids})
	if err != nil {
		return nil, ErrInvalidChangeData
	}
	return data, nil
}
