package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/justsurfingit/job-application-tracker/internal/models"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// bootstrapQuery is used when there is no history bookmark yet.
const bootstrapQuery = "subject:(application OR interview OR update OR offer OR rejected OR status) newer_than:7d"

// EmailService watches one account's Gmail inbox and moves its applications
// along the pipeline when a recruiter email says so.
type EmailService struct {
	DB             *gorm.DB
	LLMService     *LLMService
	MatcherService *MatcherService
	Applications   *ApplicationService
	GmailClient    *gmail.Service
	OwnerID        uint
}

func NewEmailService(db *gorm.DB, llm *LLMService, gmail *gmail.Service, matcher *MatcherService, apps *ApplicationService, owner uint) *EmailService {
	return &EmailService{
		DB:             db,
		LLMService:     llm,
		GmailClient:    gmail,
		MatcherService: matcher,
		Applications:   apps,
		OwnerID:        owner,
	}
}

// StartWatcher syncs immediately and then every interval until ctx ends.
func (s *EmailService) StartWatcher(ctx context.Context, interval time.Duration) {
	if s.GmailClient == nil || s.LLMService == nil {
		log.Println("⚠️ Gmail Watcher disabled (no Gmail or LLM client). Check credentials.")
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		s.SyncEmails(ctx)
		for {
			select {
			case <-ctx.Done():
				log.Println("📧 Email Watcher stopped.")
				return
			case <-ticker.C:
				s.SyncEmails(ctx)
			}
		}
	}()
}

// SyncEmails runs one sync cycle.
func (s *EmailService) SyncEmails(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
	defer cancel()

	log.Println("📧 Email Watcher: Starting Sync Cycle...")

	state := models.InboxState{AccountID: s.OwnerID}
	if err := s.DB.WithContext(ctx).FirstOrCreate(&state, models.InboxState{AccountID: s.OwnerID}).Error; err != nil {
		log.Printf("❌ Could not load inbox state: %v", err)
		return
	}

	var (
		messages     []*gmail.Message
		newHistoryID uint64
		err          error
	)
	if state.LastHistoryID == 0 {
		log.Println("🆕 First run detected. Running Full Bootstrap Sync...")
		messages, newHistoryID, err = s.performFullSync(ctx)
	} else {
		messages, newHistoryID, err = s.performIncrementalSync(ctx, state.LastHistoryID)
		// Google drops old history; start over from a full sync
		if err != nil && isHistoryExpiredError(err) {
			log.Println("⚠️ History ID expired (too old). Falling back to Full Sync.")
			messages, newHistoryID, err = s.performFullSync(ctx)
		}
	}
	if err != nil {
		log.Printf("❌ Sync failed: %v", err)
		return
	}

	if len(messages) > 0 {
		log.Printf("📥 Processing %d candidate emails...", len(messages))
	}
	failed := s.processMessages(ctx, messages)

	// a failed message keeps the bookmark where it was so the next cycle sees it again
	if failed > 0 {
		log.Printf("⚠️ %d emails failed; history stays at %d for a retry", failed, state.LastHistoryID)
		return
	}
	if newHistoryID > state.LastHistoryID {
		err := s.DB.WithContext(ctx).Model(&models.InboxState{}).
			Where("account_id = ?", s.OwnerID).
			Update("last_history_id", newHistoryID).Error
		if err != nil {
			log.Printf("❌ Could not save history id %d: %v", newHistoryID, err)
			return
		}
		log.Printf("🔖 History updated to %d", newHistoryID)
	}
}

// processMessages applies every message not seen before and reports how many
// failed. Only handled messages are marked processed.
func (s *EmailService) processMessages(ctx context.Context, messages []*gmail.Message) int {
	failed := 0
	for _, msg := range messages {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.ProcessedEmail{}).Where("id = ?", msg.Id).Count(&count).Error; err != nil {
			log.Printf("❌ Could not check email %s: %v", msg.Id, err)
			failed++
			continue
		}
		if count > 0 {
			continue
		}
		if err := s.processSingleEmail(ctx, msg); err != nil {
			failed++
			continue
		}
		if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&models.ProcessedEmail{ID: msg.Id}).Error; err != nil {
			log.Printf("❌ Could not mark email %s processed: %v", msg.Id, err)
		}
	}
	return failed
}

// performFullSync scans the last 7 days and returns the current history id
// as the new bookmark.
func (s *EmailService) performFullSync(ctx context.Context) ([]*gmail.Message, uint64, error) {
	var resp *gmail.ListMessagesResponse
	err := retry(ctx, 3, time.Second, func() error {
		var e error
		resp, e = s.GmailClient.Users.Messages.List("me").Q(bootstrapQuery).MaxResults(50).Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, 0, err
	}

	profile, err := s.GmailClient.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return nil, 0, err
	}
	return s.expandMessages(ctx, resp.Messages), profile.HistoryId, nil
}

// performIncrementalSync asks only for messages added since startID.
func (s *EmailService) performIncrementalSync(ctx context.Context, startID uint64) ([]*gmail.Message, uint64, error) {
	var resp *gmail.ListHistoryResponse
	err := retry(ctx, 3, time.Second, func() error {
		var e error
		resp, e = s.GmailClient.Users.History.List("me").
			StartHistoryId(startID).
			HistoryTypes("messageAdded").
			Context(ctx).Do()
		return e
	})
	if err != nil {
		return nil, 0, err
	}

	var headers []*gmail.Message
	for _, h := range resp.History {
		for _, added := range h.MessagesAdded {
			if added.Message != nil {
				headers = append(headers, added.Message)
			}
		}
	}
	return s.expandMessages(ctx, headers), resp.HistoryId, nil
}

// expandMessages fetches full bodies for a list of message ids.
func (s *EmailService) expandMessages(ctx context.Context, headers []*gmail.Message) []*gmail.Message {
	var full []*gmail.Message
	for _, h := range headers {
		_ = retry(ctx, 2, 500*time.Millisecond, func() error {
			msg, err := s.GmailClient.Users.Messages.Get("me", h.Id).Context(ctx).Do()
			if err == nil {
				full = append(full, msg)
			}
			return err
		})
	}
	return full
}

func (s *EmailService) processSingleEmail(ctx context.Context, msg *gmail.Message) error {
	headers := parseHeaders(msg)
	if _, err := s.applyEmail(ctx, headers["Subject"], headers["From"], getEmailBody(msg)); err != nil {
		log.Printf("[Email: %s] ❌ %v", shortSubject(headers["Subject"]), err)
		return err
	}
	return nil
}

// applyEmail matches an email to an open application and applies the
// model's verdict. It reports whether a status changed.
func (s *EmailService) applyEmail(ctx context.Context, subject, sender, body string) (bool, error) {
	logPrefix := fmt.Sprintf("[Email: %s]", shortSubject(subject))
	log.Printf("%s 📥 START processing from: %s", logPrefix, sender)

	company, candidates, err := s.MatcherService.FindApplications(ctx, s.OwnerID, subject, sender)
	if err != nil {
		return false, err
	}
	if len(candidates) == 0 {
		log.Printf("%s ⏹️  SKIPPED: no open application matches the sender or subject.", logPrefix)
		return false, nil
	}
	log.Printf("%s ✅ MATCHED Company: %s", logPrefix, company)

	target := candidates[0]
	if len(candidates) > 1 {
		roles := make([]string, len(candidates))
		for i, c := range candidates {
			roles[i] = c.Role
		}
		log.Printf("%s ⚠️ Ambiguous: %d applications (%v). Asking LLM to pick...", logPrefix, len(candidates), roles)
		idx := s.LLMService.IdentifyApplication(ctx, roles, subject, body)
		if idx < 0 {
			log.Printf("%s ⏹️  SKIPPED: LLM could not tell which application this is about.", logPrefix)
			return false, nil
		}
		target = candidates[idx]
	}
	log.Printf("%s 🎯 Linked to: %s", logPrefix, target.Role)

	verdict, err := s.LLMService.ClassifyEmail(ctx, company, subject, body)
	if err != nil {
		return false, fmt.Errorf("LLM analysis: %w", err)
	}
	log.Printf("%s 🧠 LLM Decision: Status=%s | Summary=%s", logPrefix, verdict.Status, verdict.Summary)

	if verdict.Status == VerdictNoChange || verdict.Status == VerdictUnknown {
		return false, nil
	}
	if verdict.Status == string(target.Status) {
		log.Printf("%s ⏹️  Status is already %s. Ignoring.", logPrefix, verdict.Status)
		return false, nil
	}

	updated, err := s.Applications.UpdateStatus(ctx, s.OwnerID, target.ID, verdict.Status)
	if err != nil {
		return false, err
	}
	err = s.DB.WithContext(ctx).Create(&models.ApplicationEvent{
		ApplicationID: updated.ID,
		EventType:     models.EventEmailUpdate,
		Details:       fmt.Sprintf("Status changed to %s. Summary: %s", verdict.Status, verdict.Summary),
	}).Error
	if err != nil {
		log.Printf("%s ⚠️ could not record email event: %v", logPrefix, err)
	}
	log.Printf("%s ⚡ %s -> %s", logPrefix, target.Status, updated.Status)
	return true, nil
}

// --- HELPERS ---

// retry runs f up to attempts times, doubling the pause between tries.
// Expired-history errors return at once so the caller can fall back.
func retry(ctx context.Context, attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if isHistoryExpiredError(err) {
			return err
		}
		log.Printf("⚠️ API Error: %v. Retrying in %v...", err, sleep)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

func isHistoryExpiredError(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == http.StatusNotFound
	}
	return false
}

func parseHeaders(msg *gmail.Message) map[string]string {
	res := make(map[string]string)
	if msg.Payload == nil {
		return res
	}
	for _, h := range msg.Payload.Headers {
		res[h.Name] = h.Value
	}
	return res
}

// getEmailBody prefers the plain-text part and falls back to HTML.
func getEmailBody(msg *gmail.Message) string {
	if msg.Payload == nil {
		return ""
	}
	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		return decodePart(msg.Payload.Body.Data)
	}
	for _, mime := range []string{"text/plain", "text/html"} {
		for _, part := range msg.Payload.Parts {
			if part.MimeType == mime && part.Body != nil && part.Body.Data != "" {
				return decodePart(part.Body.Data)
			}
		}
	}
	return ""
}

func decodePart(data string) string {
	d, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail sometimes omits padding
		d, _ = base64.RawURLEncoding.DecodeString(data)
	}
	return string(d)
}

func shortSubject(subject string) string {
	if len(subject) > 20 {
		return subject[:20] + "..."
	}
	return subject
}
