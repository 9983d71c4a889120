package tribute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lifeevents/les/internal/config"
	"github.com/lifeevents/les/internal/logger"
	"github.com/lifeevents/les/internal/model"
	"github.com/lifeevents/les/internal/storage"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// Generation models per media tier
const (
	imageModel = "stability-ai/sdxl"
	audioModel = "meta/musicgen"
	videoModel = "deforum/deforum_stable_diffusion"
)

// Tier thresholds in minor currency units
const (
	videoThresholdCents = 10_000_000 // 100,000 NGN
	audioThresholdCents = 5_000_000  // 50,000 NGN
)

// Generator produces thank-you tributes for contributions. The whole
// pipeline is best-effort: a generation failure must never affect the
// payment path that requested it, so every fallible step falls back to
// placeholder output and the worst case is a placeholder tribute row.
type Generator struct {
	db         *gorm.DB
	cfg        config.TributeConfig
	store      *storage.Client // nil when archiving is not configured
	ai         openai.Client
	aiEnabled  bool
	pool       *ants.Pool
	httpClient *http.Client
}

// NewGenerator creates a tribute generator with its worker pool.
func NewGenerator(db *gorm.DB, cfg config.TributeConfig, store *storage.Client) (*Generator, error) {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create tribute pool: %w", err)
	}

	g := &Generator{
		db:    db,
		cfg:   cfg,
		store: store,
		pool:  pool,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}

	if cfg.OpenAIKey != "" {
		g.ai = openai.NewClient(option.WithAPIKey(cfg.OpenAIKey))
		g.aiEnabled = true
	}

	return g, nil
}

// Submit queues tribute generation for a contribution. Errors are logged
// and swallowed.
func (g *Generator) Submit(contributionId string) {
	err := g.pool.Submit(func() {
		if err := g.Generate(context.Background(), contributionId); err != nil {
			logger.Error("Tribute generation failed for contribution %s: %v", contributionId, err)
		}
	})
	if err != nil {
		logger.Error("Failed to submit tribute task for contribution %s: %v", contributionId, err)
	}
}

// Generate produces and stores one tribute. Already-generated
// contributions are skipped.
func (g *Generator) Generate(ctx context.Context, contributionId string) error {
	var contribution model.ContributionModel
	if err := g.db.First(&contribution, "id = ?", contributionId).Error; err != nil {
		return fmt.Errorf("load contribution: %w", err)
	}
	if contribution.TributeId != "" {
		logger.Debug("Contribution %s already has tribute %s", contribution.Id, contribution.TributeId)
		return nil
	}

	var event model.EventModel
	if err := g.db.First(&event, "id = ?", contribution.EventId).Error; err != nil {
		return fmt.Errorf("load event: %w", err)
	}

	mediaType := MediaTypeFor(contribution.AmountCents)
	tributeId := uuid.NewString()

	assetURI := g.generateAsset(ctx, mediaType, event.Title, contribution.AmountCents)
	if assetURI != "" && g.store != nil {
		if archived := g.archiveAsset(ctx, tributeId, event.Id, mediaType, assetURI); archived != "" {
			assetURI = archived
		}
	}
	if assetURI == "" {
		assetURI = placeholderURI()
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"event_title":               event.Title,
		"contribution_amount_cents": contribution.AmountCents,
		"generated_at":              time.Now().UTC().Format(time.RFC3339),
	})

	tribute := model.TributeModel{
		Id:             tributeId,
		ContributionId: contribution.Id,
		EventId:        event.Id,
		MediaType:      mediaType,
		AssetURI:       assetURI,
		Description:    g.describe(ctx, event.Title, contribution.AmountCents),
		Metadata:       metadata,
	}

	if err := g.db.Create(&tribute).Error; err != nil {
		return fmt.Errorf("insert tribute: %w", err)
	}

	if err := g.db.Model(&model.ContributionModel{}).
		Where("id = ?", contribution.Id).
		Update("tribute_id", tribute.Id).Error; err != nil {
		return fmt.Errorf("link tribute to contribution: %w", err)
	}

	logger.Info("Generated %s tribute %s for contribution %s", mediaType, tribute.Id, contribution.Id)
	return nil
}

// Release shuts down the worker pool.
func (g *Generator) Release() {
	g.pool.Release()
}

// MediaTypeFor tiers the tribute medium by contribution size.
func MediaTypeFor(amountCents int64) model.TributeMediaType {
	switch {
	case amountCents >= videoThresholdCents:
		return model.TributeMediaVideo
	case amountCents >= audioThresholdCents:
		return model.TributeMediaAudio
	default:
		return model.TributeMediaImage
	}
}

// generateAsset calls the Replicate predictions API. Returns "" when
// generation is unavailable or fails.
func (g *Generator) generateAsset(ctx context.Context, mediaType model.TributeMediaType, eventTitle string, amountCents int64) string {
	if g.cfg.ReplicateToken == "" {
		logger.Debug("Replicate token not configured, skipping asset generation")
		return ""
	}

	var modelVersion, prompt string
	naira := amountCents / 100
	switch mediaType {
	case model.TributeMediaVideo:
		modelVersion = videoModel
		prompt = fmt.Sprintf("Celebration video for %s, African celebration, vibrant and joyful", eventTitle)
	case model.TributeMediaAudio:
		modelVersion = audioModel
		prompt = fmt.Sprintf("Celebratory music for %s, joyful, African rhythms, festive", eventTitle)
	default:
		modelVersion = imageModel
		prompt = fmt.Sprintf("Beautiful celebratory artwork for %q, African cultural motifs, vibrant colors, joyful celebration, contribution of ₦%d", eventTitle, naira)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"version": modelVersion,
		"input":   map[string]string{"prompt": prompt},
	})
	if err != nil {
		return ""
	}

	url := strings.TrimSuffix(g.cfg.ReplicateBaseURL, "/") + "/v1/predictions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return ""
	}
	req.Header.Set("Authorization", "Token "+g.cfg.ReplicateToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		logger.Warn("Replicate request failed: %v", err)
		return ""
	}
	defer resp.Body.Close()

	var result struct {
		Output json.RawMessage `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Warn("Failed to decode replicate response: %v", err)
		return ""
	}

	// Output is a URL list for some models and a single URL for others
	var urls []string
	if err := json.Unmarshal(result.Output, &urls); err == nil && len(urls) > 0 {
		return urls[0]
	}
	var single string
	if err := json.Unmarshal(result.Output, &single); err == nil {
		return single
	}
	return ""
}

// archiveAsset copies a generated asset into object storage. Returns ""
// on failure, leaving the caller with the original URL.
func (g *Generator) archiveAsset(ctx context.Context, tributeId, eventId string, mediaType model.TributeMediaType, assetURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return ""
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		logger.Warn("Failed to download tribute asset: %v", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		logger.Warn("Tribute asset download returned status %d", resp.StatusCode)
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		logger.Warn("Failed to read tribute asset: %v", err)
		return ""
	}

	contentType := resp.Header.Get("Content-Type")
	key := fmt.Sprintf("tributes/%s/%s%s", eventId, tributeId, extensionFor(mediaType))

	url, err := g.store.Put(ctx, key, body, contentType)
	if err != nil {
		logger.Warn("Failed to archive tribute asset: %v", err)
		return ""
	}
	return url
}

// describe writes the thank-you text, via the language model when
// configured and a static message otherwise.
func (g *Generator) describe(ctx context.Context, eventTitle string, amountCents int64) string {
	fallback := fmt.Sprintf("Thank you for contributing ₦%d to %s!", amountCents/100, eventTitle)
	if !g.aiEnabled {
		return fallback
	}

	prompt := fmt.Sprintf(
		"Write one warm sentence thanking a guest for contributing ₦%d to the celebration %q. No emojis.",
		amountCents/100, eventTitle)

	resp, err := g.ai.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		logger.Warn("Tribute description generation failed: %v", err)
		return fallback
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return fallback
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

func extensionFor(mediaType model.TributeMediaType) string {
	switch mediaType {
	case model.TributeMediaVideo:
		return ".mp4"
	case model.TributeMediaAudio:
		return ".mp3"
	default:
		return ".png"
	}
}

func placeholderURI() string {
	return "ipfs://Qm" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
