package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/precha888/ecount-chatbot/internal/catalog/model"
	"github.com/precha888/ecount-chatbot/internal/erp"
)

const (
	DefaultMinScore    = 70
	DefaultMinTokenLen = 4
)

// user-facing texts
const (
	promptText       = "กรุณาพิมพ์รหัสสินค้าหรือรุ่น เช่น MY2N24VDC หรือ 2961105"
	notFoundFormat   = "ยังไม่พบรุ่นใกล้เคียงกับ '%s' (score=%.1f) รบกวนตรวจสอบรหัสอีกครั้งครับ"
	priceUnavailable = "ไม่สามารถดึงราคา/สต็อกได้"
	stockUnknown     = "ไม่ทราบ"
)

// Matcher finds the closest catalog product for a query.
type Matcher interface {
	BestMatch(query string) model.Match
}

// Inventory fetches live price and stock for an item code.
type Inventory interface {
	PriceAndStock(ctx context.Context, itemCode string) (price, stock erp.Value, err error)
}

// Options tune matching. MinScore is used as given, so 0 accepts any match;
// a MinTokenLen below 1 falls back to DefaultMinTokenLen.
type Options struct {
	MinScore    float64
	MinTokenLen int
}

func DefaultOptions() Options {
	return Options{MinScore: DefaultMinScore, MinTokenLen: DefaultMinTokenLen}
}

// Composer turns a free-text message into the bot's reply.
type Composer struct {
	catalog   Matcher
	inventory Inventory
	minScore  float64
	token     *regexp.Regexp
	logger    zerolog.Logger
}

func NewComposer(catalog Matcher, inventory Inventory, opts Options, logger zerolog.Logger) *Composer {
	if opts.MinTokenLen < 1 {
		opts.MinTokenLen = DefaultMinTokenLen
	}
	return &Composer{
		catalog:   catalog,
		inventory: inventory,
		minScore:  opts.MinScore,
		token:     regexp.MustCompile(fmt.Sprintf(`[A-Za-z0-9\-]{%d,}`, opts.MinTokenLen)),
		logger:    logger.With().Str("component", "composer").Logger(),
	}
}

// Reply runs extraction, matching and the ERP lookup for one message. It always
// returns text: ERP failures are logged and shown as placeholders.
func (c *Composer) Reply(ctx context.Context, text string) string {
	query := c.token.FindString(text)
	if query == "" {
		return promptText
	}

	m := c.catalog.BestMatch(query)
	if !m.Found() || m.Score < c.minScore {
		c.logger.Debug().Str("query", query).Float64("score", m.Score).Msg("no confident match")
		return fmt.Sprintf(notFoundFormat, query, m.Score)
	}
	p := m.Product

	priceText, stockText := priceUnavailable, stockUnknown
	price, stock, err := c.inventory.PriceAndStock(ctx, p.ItemCode())
	if err != nil {
		c.logger.Error().Err(err).Str("item_code", p.ItemCode()).Msg("ecount lookup failed")
	} else {
		priceText, stockText = price.Fixed(2), stock.String()
	}

	unit := p.Unit()
	var b strings.Builder
	b.WriteString("พบรุ่นที่ใกล้เคียงที่สุด:\n")
	fmt.Fprintf(&b, "🔹 MODEL: %s\n", p.Model())
	fmt.Fprintf(&b, "🔹 ITEM_CODE: %s\n", p.ItemCode())
	fmt.Fprintf(&b, "🔹 ชื่อสินค้า: %s\n", p.Name())
	fmt.Fprintf(&b, "🔹 รายละเอียด: %s\n", p.Spec())
	fmt.Fprintf(&b, "🔹 หน่วยขาย: %s\n", unit)
	fmt.Fprintf(&b, "🔹 ราคา: %s ต่อ %s\n", priceText, unit)
	fmt.Fprintf(&b, "🔹 สต๊อกคงเหลือ: %s %s\n", stockText, unit)
	return b.String()
}
