package usecase

import (
	"context"
	"fmt"
	"strings"

	"nomadlybot/internal/domain"
	"nomadlybot/internal/domain/model"
	"nomadlybot/internal/domain/ports/adapter"
	"nomadlybot/internal/markup"

	"github.com/rs/zerolog"
)

// MinGeneratedRunes is the shortest generated copy accepted before sanitizing.
const MinGeneratedRunes = 50

const crossPromo = "@hostbay_bot for cPanel/Plesk hosting and country TLDs (.ng .za .ke .gh .cm .tz)"

type serviceContext struct {
	services string
	details  []string
	cta      string
}

var promoServices = map[model.Theme]serviceContext{
	model.ThemeDomains: {
		services: "DMCA-ignored offshore domain registration",
		details: []string{
			".sbs, .com, .net, .org and 400+ extensions",
			"Offshore registration with total content privacy",
			"Instant DNS setup and full management panel",
			"Pay with BTC, ETH, USDT or bank transfer",
			"Free .sbs domains with subscription plans",
		},
		cta: "Register Domain Names",
	},
	model.ThemeShortener: {
		services: "URL shortener with custom domain branding",
		details: []string{
			"Custom branded short URLs using your own domain",
			"Real-time click analytics",
			"Bitly integration available",
			"Random or custom back-half",
			"Unlimited links with Daily, Weekly or Monthly plans",
		},
		cta: "URL Shortener",
	},
	model.ThemeLeads: {
		services: "Phone number lead generation and validation",
		details: []string{
			"Verified leads by country, state and area code",
			"SMS-ready and voice-ready numbers",
			"Carrier filter (T-Mobile, AT&T, Verizon)",
			"Validate your own list for $15 per 1,000",
			"Leads from $20 per 1,000",
			"CNAM lookup included",
			"Bulk download with instant delivery",
		},
		cta: "HQ SMS Lead",
	},
}

var languageNames = map[model.Language]string{
	"en": "English",
	"fr": "French",
	"zh": "Chinese (Simplified)",
	"hi": "Hindi",
}

// BuildPromoPrompt renders the copywriting instruction for (theme, lang).
func BuildPromoPrompt(theme model.Theme, lang model.Language) string {
	svc, ok := promoServices[theme]
	if !ok {
		svc = promoServices[model.ThemeDomains]
	}
	name, ok := languageNames[lang]
	if !ok {
		name = languageNames[model.DefaultLanguage]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a friendly, persuasive Telegram bot copywriter. Write a short promotional message for a Telegram bot that offers %s.\n\n", svc.services)
	b.WriteString("Key selling points:\n")
	for _, d := range svc.details {
		b.WriteString("- " + d + "\n")
	}
	b.WriteString("\nRules:\n")
	fmt.Fprintf(&b, "- Write in %s\n", name)
	b.WriteString("- Use ONLY Telegram HTML tags: <b>bold</b> and <code>code</code>. Do NOT use markdown syntax like **bold** or __italic__\n")
	b.WriteString("- Start with a catchy <b>HEADLINE</b> in the message language\n")
	b.WriteString("- Be friendly, engaging, and create urgency without being spammy\n")
	b.WriteString("- Keep under 900 characters total (this will be a photo caption)\n")
	fmt.Fprintf(&b, "- End with a call-to-action: tap <b>%s</b>\n", svc.cta)
	b.WriteString("- Add a separator line \"-----\" at the bottom\n")
	fmt.Fprintf(&b, "- Below the separator, mention: %s\n", crossPromo)
	b.WriteString("- Each message should feel unique: vary the angle, hook, and structure\n")
	b.WriteString("- Do NOT use emoji characters\n\n")
	b.WriteString("Return ONLY the message text, nothing else.")
	return b.String()
}

var _ adapter.PromoGenerator = (*aiPromoGenerator)(nil)

// GeneratorOptions selects the model and sampling of generated promos.
type GeneratorOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

type aiPromoGenerator struct {
	ai     adapter.AIServiceAdapter
	tokens adapter.TokenCounter
	opts   GeneratorOptions
	log    *zerolog.Logger
}

// NewAIPromoGenerator returns a generator backed by an LLM. tokens may be nil.
func NewAIPromoGenerator(ai adapter.AIServiceAdapter, tokens adapter.TokenCounter, opts GeneratorOptions, logger *zerolog.Logger) *aiPromoGenerator {
	return &aiPromoGenerator{ai: ai, tokens: tokens, opts: opts, log: logger}
}

func (g *aiPromoGenerator) Generate(ctx context.Context, theme model.Theme, lang model.Language) (string, error) {
	prompt := BuildPromoPrompt(theme, lang)
	if g.tokens != nil {
		g.log.Debug().
			Str("theme", string(theme)).
			Str("lang", string(lang)).
			Int("prompt_tokens", g.tokens.Count(g.opts.Model, prompt)).
			Msg("generating promo")
	}

	text, err := g.ai.Chat(ctx, g.opts.Model, []adapter.Message{{Role: "user", Content: prompt}}, adapter.ChatOptions{
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate %s/%s: %w", theme, lang, err)
	}
	text = strings.TrimSpace(text)
	if len([]rune(text)) < MinGeneratedRunes {
		return "", domain.ErrEmptyGeneration
	}
	return markup.FitCaption(text), nil
}

var _ adapter.PromoGenerator = noopPromoGenerator{}

type noopPromoGenerator struct{}

// NewNoopPromoGenerator is used when no AI provider is configured.
func NewNoopPromoGenerator() adapter.PromoGenerator { return noopPromoGenerator{} }

func (noopPromoGenerator) Generate(context.Context, model.Theme, model.Language) (string, error) {
	return "", domain.ErrGeneratorDisabled
}
