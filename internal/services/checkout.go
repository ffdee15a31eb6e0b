package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storyloft/storyloft-backend/internal/logger"
	"github.com/storyloft/storyloft-backend/internal/repos"
	"github.com/storyloft/storyloft-backend/internal/types"
)

// signatureTolerance bounds how old a webhook timestamp may be before the
// event is rejected as a possible replay.
const signatureTolerance = 5 * time.Minute

type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// CheckoutEvent is the payload shape the payment processor posts to the
// webhook endpoint.
type CheckoutEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                string            `json:"id"`
			ClientReferenceID string            `json:"client_reference_id"`
			AmountTotal       int64             `json:"amount_total"`
			Currency          string            `json:"currency"`
			Metadata          map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, authorID, manuscriptID uuid.UUID, pkg string) (*CheckoutSession, error)
	// HandleWebhook verifies the signature header against the shared
	// secret before trusting the payload, then activates the purchased
	// phases on checkout.session.completed.
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error
}

type checkoutService struct {
	db            *gorm.DB
	log           *logger.Logger
	purchaseRepo  repos.UserPurchaseRepo
	phaseRepo     repos.EditingPhaseRepo
	notifier      ProgressNotifier
	webhookSecret string
	baseURL       string
	apiKey        string
	httpClient    *http.Client
	now           func() time.Time
}

func NewCheckoutService(
	db *gorm.DB,
	baseLog *logger.Logger,
	purchaseRepo repos.UserPurchaseRepo,
	phaseRepo repos.EditingPhaseRepo,
	notifier ProgressNotifier,
) (CheckoutService, error) {
	secret := os.Getenv("CHECKOUT_WEBHOOK_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("missing CHECKOUT_WEBHOOK_SECRET")
	}
	apiKey := os.Getenv("CHECKOUT_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing CHECKOUT_API_KEY")
	}
	baseURL := os.Getenv("CHECKOUT_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &checkoutService{
		db:            db,
		log:           baseLog.With("service", "CheckoutService"),
		purchaseRepo:  purchaseRepo,
		phaseRepo:     phaseRepo,
		notifier:      notifier,
		webhookSecret: secret,
		baseURL:       baseURL,
		apiKey:        apiKey,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		now:           time.Now,
	}, nil
}

func (cs *checkoutService) CreateCheckoutSession(ctx context.Context, authorID, manuscriptID uuid.UUID, pkg string) (*CheckoutSession, error) {
	if authorID == uuid.Nil || manuscriptID == uuid.Nil {
		return nil, fmt.Errorf("author id and manuscript id required")
	}
	if !types.ValidPackage(pkg) {
		return nil, fmt.Errorf("unknown package %q", pkg)
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", manuscriptID.String())
	form.Set("metadata[package]", pkg)
	form.Set("metadata[author_id]", authorID.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cs.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build checkout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cs.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := cs.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout session request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read checkout response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("checkout http %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var parsed struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode checkout response: %w", err)
	}

	purchase := &types.UserPurchase{
		ID:                uuid.New(),
		AuthorID:          authorID,
		ManuscriptID:      &manuscriptID,
		Package:           pkg,
		CheckoutSessionID: parsed.ID,
		Status:            types.PurchaseStatusPending,
	}
	if _, err := cs.purchaseRepo.Create(ctx, nil, []*types.UserPurchase{purchase}); err != nil {
		return nil, fmt.Errorf("record pending purchase: %w", err)
	}

	cs.log.Info("Checkout session created", "session_id", parsed.ID, "package", pkg, "manuscript_id", manuscriptID)
	return &CheckoutSession{SessionID: parsed.ID, RedirectURL: parsed.URL}, nil
}

// VerifySignature checks a `t=<unix>,v1=<hex>` header where v1 is
// HMAC-SHA256(secret, "<t>.<payload>"). Comparison is constant-time and the
// timestamp must fall within the tolerance window of now.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	if header == "" {
		return fmt.Errorf("missing signature header")
	}
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("malformed signature header")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed signature timestamp")
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return fmt.Errorf("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return fmt.Errorf("no matching signature")
}

// PhasesForPackage maps a purchased package to the phase numbers it
// activates.
func PhasesForPackage(pkg string) []int {
	switch pkg {
	case types.PackagePublishing:
		return []int{types.PhasePublishing}
	case types.PackageMarketing:
		return []int{types.PhaseMarketing}
	case types.PackageComplete:
		return []int{types.PhasePublishing, types.PhaseMarketing}
	}
	return nil
}

func (cs *checkoutService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	if err := VerifySignature(payload, signatureHeader, cs.webhookSecret, cs.now()); err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	var event CheckoutEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode webhook event: %w", err)
	}
	if event.Type != "checkout.session.completed" {
		cs.log.Debug("Ignoring webhook event", "type", event.Type)
		return nil
	}

	pkg := event.Data.Object.Metadata["package"]
	phases := PhasesForPackage(pkg)
	if phases == nil {
		cs.log.Warn("Completed checkout with unknown package", "package", pkg, "session_id", event.Data.Object.ID)
		return nil
	}

	manuscriptID, err := uuid.Parse(event.Data.Object.ClientReferenceID)
	if err != nil {
		return fmt.Errorf("invalid client_reference_id: %w", err)
	}

	var purchase *types.UserPurchase
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := cs.now()
		for _, phase := range phases {
			if err := cs.phaseRepo.Activate(ctx, tx, manuscriptID, phase, now); err != nil {
				return fmt.Errorf("activate phase %d: %w", phase, err)
			}
		}
		if err := cs.purchaseRepo.MarkCompleted(ctx, tx, event.Data.Object.ID, now); err != nil {
			return fmt.Errorf("mark purchase completed: %w", err)
		}
		row, err := cs.purchaseRepo.GetByCheckoutSessionID(ctx, tx, event.Data.Object.ID)
		if err != nil {
			return fmt.Errorf("load purchase: %w", err)
		}
		purchase = row
		return nil
	})
	if err != nil {
		return err
	}

	cs.log.Info("Checkout completed, phases activated", "manuscript_id", manuscriptID, "package", pkg, "phases", phases)
	if cs.notifier != nil && purchase != nil {
		cs.notifier.PurchaseCompleted(ctx, purchase.AuthorID, purchase)
		if fresh, err := cs.phaseRepo.GetByManuscriptID(ctx, nil, manuscriptID); err == nil {
			cs.notifier.PhasesUpdated(ctx, manuscriptID, fresh)
		}
	}
	return nil
}
