package reporting

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/vfg2006/admanager-extractor/internal/config"
	"github.com/vfg2006/admanager-extractor/internal/domain"
	"github.com/vfg2006/admanager-extractor/pkg/apperrors"
)

// Presets de intervalo resolvidos localmente
const (
	DateRangeCustom    = "Custom"
	DateRangeLastWeek  = "Last week (sun-sat)"
	DateRangeLastMonth = "Last month"
)

// Palavras-chave resolvidas pelo próprio Ad Manager no momento da execução
var dynamicDateRanges = map[string]struct{}{
	"TODAY":          {},
	"YESTERDAY":      {},
	"LAST_WEEK":      {},
	"LAST_MONTH":     {},
	"NEXT_DAY":       {},
	"NEXT_WEEK":      {},
	"NEXT_MONTH":     {},
	"NEXT_90_DAYS":   {},
	"NEXT_3_MONTHS":  {},
	"NEXT_12_MONTHS": {},
	"REACH_LIFETIME": {},
}

var relativeDateRe = regexp.MustCompile(`^(\d+)\s+(day|week|month|year)s?\s+ago$`)

// ResolveDateRange converte a configuração de datas em um par explícito,
// uma palavra-chave dinâmica ou nenhuma restrição
func ResolveDateRange(settings config.DateSettings, now time.Time) (domain.DateSpec, error) {
	preset := strings.TrimSpace(settings.Range)
	today := domain.DateOf(now)

	switch {
	case strings.EqualFold(preset, DateRangeLastWeek):
		from, to := lastWeekSunSat(today)
		return domain.DateSpec{From: &from, To: &to}, nil

	case strings.EqualFold(preset, DateRangeLastMonth):
		from, to := lastMonth(today)
		return domain.DateSpec{From: &from, To: &to}, nil

	case isDynamic(preset):
		return domain.DateSpec{Dynamic: strings.ToUpper(preset)}, nil

	case strings.EqualFold(preset, DateRangeCustom):
		return resolveExplicit(settings, now)

	case preset == "":
		hasFrom := strings.TrimSpace(settings.From) != ""
		hasTo := strings.TrimSpace(settings.To) != ""
		if hasFrom || hasTo {
			return resolveExplicit(settings, now)
		}
		return domain.DateSpec{}, nil
	}

	return domain.DateSpec{}, apperrors.Configuration("report_settings.date_settings.date_range",
		fmt.Sprintf("unknown date range %q", preset))
}

func isDynamic(preset string) bool {
	_, ok := dynamicDateRanges[strings.ToUpper(preset)]
	return ok
}

func resolveExplicit(settings config.DateSettings, now time.Time) (domain.DateSpec, error) {
	from, err := ParseDate(settings.From, now)
	if err != nil {
		return domain.DateSpec{}, apperrors.DateParse(err, "date_from",
			fmt.Sprintf("cannot parse date %q", settings.From))
	}

	to, err := ParseDate(settings.To, now)
	if err != nil {
		return domain.DateSpec{}, apperrors.DateParse(err, "date_to",
			fmt.Sprintf("cannot parse date %q", settings.To))
	}

	if to.Before(from) {
		return domain.DateSpec{}, apperrors.DateParse(nil, "date_from",
			fmt.Sprintf("date_from %s is after date_to %s", from, to))
	}

	return domain.DateSpec{From: &from, To: &to}, nil
}

// ParseDate aceita datas absolutas (2024-01-31, 01/31/2024, ...) e expressões
// relativas simples: today, yesterday, "N days ago", "N weeks ago", "N months ago", "N years ago"
func ParseDate(value string, now time.Time) (domain.Date, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return domain.Date{}, fmt.Errorf("empty date")
	}

	switch v {
	case "today":
		return domain.DateOf(now), nil
	case "yesterday":
		return domain.DateOf(now.AddDate(0, 0, -1)), nil
	}

	if m := relativeDateRe.FindStringSubmatch(v); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return domain.Date{}, err
		}
		switch m[2] {
		case "day":
			return domain.DateOf(now.AddDate(0, 0, -n)), nil
		case "week":
			return domain.DateOf(now.AddDate(0, 0, -7*n)), nil
		case "month":
			return domain.DateOf(now.AddDate(0, -n, 0)), nil
		default:
			return domain.DateOf(now.AddDate(-n, 0, 0)), nil
		}
	}

	t, err := dateparse.ParseIn(strings.TrimSpace(value), now.Location())
	if err != nil {
		return domain.Date{}, err
	}
	return domain.DateOf(t), nil
}

// lastWeekSunSat retorna o último sábado até hoje (inclusive) e o domingo seis dias antes
func lastWeekSunSat(today domain.Date) (domain.Date, domain.Date) {
	t := today.Time(time.UTC)
	back := (int(t.Weekday()) - int(time.Saturday) + 7) % 7
	saturday := t.AddDate(0, 0, -back)
	sunday := saturday.AddDate(0, 0, -6)
	return domain.DateOf(sunday), domain.DateOf(saturday)
}

// lastMonth retorna o primeiro e o último dia do mês anterior
func lastMonth(today domain.Date) (domain.Date, domain.Date) {
	firstOfThisMonth := time.Date(today.Year, today.Month, 1, 0, 0, 0, 0, time.UTC)
	lastOfPrevious := firstOfThisMonth.AddDate(0, 0, -1)
	firstOfPrevious := time.Date(lastOfPrevious.Year(), lastOfPrevious.Month(), 1, 0, 0, 0, 0, time.UTC)
	return domain.DateOf(firstOfPrevious), domain.DateOf(lastOfPrevious)
}
