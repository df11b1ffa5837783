package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/leodymann/wi-api/internal/apperr"
	"github.com/leodymann/wi-api/internal/infra"
	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/money"
	"github.com/leodymann/wi-api/internal/schedule"

	"github.com/rs/zerolog/log"
)

// MediaSender is the part of the messenger used by offers and reports.
type MediaSender interface {
	SendMedia(ctx context.Context, to string, m infra.Media) error
}

// OfferSource lists products that may be advertised.
type OfferSource interface {
	OfferCandidates(ctx context.Context, limit int) ([]model.Product, error)
}

// ParseGroupIDs reads UAZAPI_PRODUCTS_GROUP_TO. It accepts a JSON array or a
// comma separated list; entries not ending in @g.us are dropped, duplicates
// keep their first position.
func ParseGroupIDs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var groups []string
	if strings.HasPrefix(raw, "[") {
		var arr []any
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			for _, v := range arr {
				groups = append(groups, strings.TrimSpace(fmt.Sprint(v)))
			}
		}
	}
	if len(groups) == 0 {
		groups = strings.Split(raw, ",")
	}

	seen := make(map[string]bool, len(groups))
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if !strings.HasSuffix(g, "@g.us") {
			log.Warn().Str("group", g).Msg("worker: invalid group id ignored")
			continue
		}
		if seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

// ResolveImageURL returns an absolute URL the provider can download.
func ResolveImageURL(raw, publicBase string) (string, error) {
	u := strings.TrimSpace(raw)
	if u == "" {
		return "", apperr.New(apperr.KindInvalidArgument, "offer.image", "imagem sem url")
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u, nil
	}
	base := strings.TrimRight(strings.TrimSpace(publicBase), "/")
	if base == "" {
		return "", apperr.New(apperr.KindConfiguration, "offer.image",
			"imagem %q não tem URL pública; configure MEDIA_PUBLIC_BASE_URL", u)
	}
	return base + "/" + strings.TrimLeft(u, "/"), nil
}

// OfferCaption is the text attached to the product photo.
func OfferCaption(p *model.Product) string {
	return fmt.Sprintf(
		"🔥 *OFERTA DO DIA 🔥*\n"+
			"🏍️ Modelo: %s %s\n"+
			"🎨 Cor: %s\n"+
			"📆 Ano: %d\n"+
			"🛣️ KM: %d\n"+
			"💰 Preço: *%s*\n",
		p.Brand, p.Model, p.Color, p.Year, p.Km, money.FormatBRL(p.SalePrice))
}

type OfferConfig struct {
	Groups        []string
	StartHour     int
	EndHour       int
	Limit         int
	PublicBaseURL string
	Location      *time.Location
}

// OfferTask posts at most one product per clock hour to the sales groups,
// never the same product twice on one day.
type OfferTask struct {
	products OfferSource
	sender   MediaSender
	limiter  *schedule.CampaignLimiter
	cfg      OfferConfig
}

func NewOfferTask(products OfferSource, sender MediaSender, limiter *schedule.CampaignLimiter, cfg OfferConfig) *OfferTask {
	if cfg.Limit <= 0 {
		cfg.Limit = 50
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &OfferTask{products: products, sender: sender, limiter: limiter, cfg: cfg}
}

func (t *OfferTask) Task() Task { return Task{Name: "offers", Run: t.Run} }

func (t *OfferTask) Run(ctx context.Context, now time.Time) (int, error) {
	if len(t.cfg.Groups) == 0 {
		return 0, nil
	}
	local := now.In(t.cfg.Location)
	ok, err := t.limiter.CanSendNow(ctx, local, t.cfg.StartHour, t.cfg.EndHour)
	if err != nil || !ok {
		return 0, err
	}

	sentToday, err := t.limiter.SentToday(ctx, local)
	if err != nil {
		return 0, err
	}
	products, err := t.products.OfferCandidates(ctx, t.cfg.Limit)
	if err != nil {
		return 0, fmt.Errorf("offers: candidates: %w", err)
	}

	var chosen *model.Product
	var cover *model.ProductImage
	for i := range products {
		p := &products[i]
		if sentToday[p.ID.String()] {
			continue
		}
		if img := p.CoverImage(); img != nil {
			chosen, cover = p, img
			break
		}
	}
	if chosen == nil {
		log.Debug().Int("already_sent", len(sentToday)).Msg("worker: offers: no new product for today")
		return 0, nil
	}

	imageURL, err := ResolveImageURL(cover.URL, t.cfg.PublicBaseURL)
	if err != nil {
		return 0, err
	}
	media := infra.Media{Kind: "image", File: imageURL, Caption: OfferCaption(chosen)}
	for _, group := range t.cfg.Groups {
		if err := t.sender.SendMedia(ctx, group, media); err != nil {
			return 0, fmt.Errorf("offers: send product %s: %w", chosen.ID, err)
		}
	}

	if err := t.limiter.MarkSent(ctx, local, chosen.ID.String()); err != nil {
		return 1, fmt.Errorf("offers: persist state: %w", err)
	}
	log.Info().Str("product_id", chosen.ID.String()).Int("groups", len(t.cfg.Groups)).Msg("worker: offer sent")
	return 1, nil
}
