package ratios

import (
	"strings"

	"github.com/bobmcallan/borsa/internal/models"
)

// Tier is a four-step quality band shared by the core ratios.
type Tier int

const (
	TierLow Tier = iota
	TierAverage
	TierGood
	TierExcellent
)

// assessmentTier recovers the band behind an assessment label so scores
// always agree with the label shown next to them.
func assessmentTier(label string) Tier {
	switch {
	case strings.HasPrefix(label, "Mükemmel"):
		return TierExcellent
	case strings.HasPrefix(label, "İyi"):
		return TierGood
	case strings.HasPrefix(label, "Orta"):
		return TierAverage
	default:
		return TierLow
	}
}

// returnTier bands ROE and ROIC percentages.
func returnTier(pct float64) Tier {
	switch {
	case pct >= 15:
		return TierExcellent
	case pct >= 10:
		return TierGood
	case pct >= 5:
		return TierAverage
	default:
		return TierLow
	}
}

func assessReturn(pct float64) string {
	switch returnTier(pct) {
	case TierExcellent:
		return "Mükemmel (≥15%)"
	case TierGood:
		return "İyi (≥10%)"
	case TierAverage:
		return "Orta (5-10%)"
	default:
		return "Düşük (<5%)"
	}
}

func debtToEquityTier(ratio float64) Tier {
	switch {
	case ratio < 0.5:
		return TierExcellent
	case ratio < 1.0:
		return TierGood
	case ratio < 2.0:
		return TierAverage
	default:
		return TierLow
	}
}

func assessDebtToEquity(ratio float64) string {
	switch debtToEquityTier(ratio) {
	case TierExcellent:
		return "Mükemmel (<0.5)"
	case TierGood:
		return "İyi (<1.0)"
	case TierAverage:
		return "Orta (1.0-2.0)"
	default:
		return "Yüksek Risk (>2.0)"
	}
}

func assessDebtToAssets(ratio float64) string {
	switch {
	case ratio < 0.3:
		return "Mükemmel (<30%)"
	case ratio < 0.5:
		return "İyi (<50%)"
	case ratio < 0.7:
		return "Orta (50-70%)"
	default:
		return "Yüksek Risk (>70%)"
	}
}

func assessInterestCoverage(ratio float64) string {
	switch {
	case ratio > 5.0:
		return "Mükemmel (>5x)"
	case ratio > 3.0:
		return "İyi (>3x)"
	case ratio > 1.5:
		return "Orta (1.5-3x)"
	default:
		return "Riskli (<1.5x)"
	}
}

func assessDebtService(ratio float64) string {
	switch {
	case ratio > 2.0:
		return "Mükemmel (>2x)"
	case ratio > 1.5:
		return "İyi (>1.5x)"
	case ratio > 1.0:
		return "Orta (1.0-1.5x)"
	default:
		return "Riskli (<1.0x)"
	}
}

func fcfTier(pct float64) Tier {
	switch {
	case pct >= 10:
		return TierExcellent
	case pct >= 5:
		return TierGood
	case pct >= 2:
		return TierAverage
	default:
		return TierLow
	}
}

func assessFCFMargin(pct float64) string {
	switch fcfTier(pct) {
	case TierExcellent:
		return "Mükemmel (≥10%)"
	case TierGood:
		return "İyi (≥5%)"
	case TierAverage:
		return "Orta (2-5%)"
	default:
		return "Düşük (<2%)"
	}
}

func assessCashFlowToEarnings(ratio float64) string {
	switch {
	case ratio >= 1.2:
		return "Mükemmel (≥1.2) - Yüksek nakit kalitesi"
	case ratio >= 1.0:
		return "İyi (≥1.0) - Sağlıklı nakit üretimi"
	case ratio >= 0.8:
		return "Orta (0.8-1.0) - Makul nakit kalitesi"
	default:
		return "Düşük (<0.8) - Zayıf nakit dönüşümü"
	}
}

func assessAccruals(pct float64) string {
	abs := pct
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs < 5:
		return "Mükemmel (<5%) - Düşük tahakkuklar"
	case abs < 10:
		return "İyi (<10%) - Makul tahakkuklar"
	case abs < 15:
		return "Orta (10-15%) - Yüksekçe tahakkuklar"
	default:
		return "Düşük (>15%) - Çok yüksek tahakkuklar"
	}
}

func assessWorkingCapitalImpact(pct float64) string {
	switch {
	case pct < -10:
		return "Endişe verici - İşletme sermayesi büyük kaynak tüketiyor"
	case pct < 0:
		return "İyi - İşletme sermayesi kaynak tüketiyor"
	case pct < 10:
		return "Mükemmel - İşletme sermayesi nakit sağlıyor"
	default:
		return "Çok iyi - İşletme sermayesi önemli nakit sağlıyor"
	}
}

// Earnings quality labels
const (
	QualityHigh   = "Yüksek Kalite"
	QualityMedium = "Orta Kalite"
	QualityLow    = "Düşük Kalite"
)

func qualityScore(cfToNI, accrualsAbs float64, wcGood bool) int {
	score := 0
	if cfToNI >= 1.0 {
		score++
	}
	if accrualsAbs < 10 {
		score++
	}
	if wcGood {
		score++
	}
	return score
}

func qualityLabel(score int) string {
	switch {
	case score >= 3:
		return QualityHigh
	case score >= 2:
		return QualityMedium
	default:
		return QualityLow
	}
}

// AltmanZone classifies a Z-Score.
func AltmanZone(z float64) string {
	switch {
	case z > 2.99:
		return models.ZoneSafe
	case z > 1.81:
		return models.ZoneGrey
	default:
		return models.ZoneDistress
	}
}

func altmanDescription(zone string) (assessment, risk string) {
	switch zone {
	case models.ZoneSafe:
		return "Güvenli Bölge (>2.99) - Düşük iflas riski", "DÜŞÜK"
	case models.ZoneGrey:
		return "Gri Bölge (1.81-2.99) - Orta düzey risk", "ORTA"
	default:
		return "Sıkıntı Bölgesi (<1.81) - Yüksek iflas riski", "YÜKSEK"
	}
}

func assessRealGrowth(pct float64) string {
	switch {
	case pct > 10:
		return "Mükemmel (>10%) - Güçlü reel büyüme"
	case pct > 5:
		return "İyi (5-10%) - Sağlıklı reel büyüme"
	case pct > 0:
		return "Orta (0-5%) - Pozitif ama zayıf reel büyüme"
	default:
		return "Düşük (<0%) - Negatif reel büyüme (enflasyonun altında)"
	}
}

// Ratings used by the comprehensive analysis
const (
	RatingExcellent = "EXCELLENT"
	RatingGood      = "GOOD"
	RatingAverage   = "AVERAGE"
	RatingPoor      = "POOR"
	RatingLow       = "LOW"
	RatingHighRisk  = "HIGH_RISK"
)

// rateAbove bands a higher-is-better ratio against three descending cut-offs.
func rateAbove(v, excellent, good, average float64, floor string) string {
	switch {
	case v > excellent:
		return RatingExcellent
	case v > good:
		return RatingGood
	case v > average:
		return RatingAverage
	default:
		return floor
	}
}

// rateBelow bands a lower-is-better ratio against three ascending cut-offs.
func rateBelow(v, excellent, good, average float64, ceiling string) string {
	switch {
	case v < excellent:
		return RatingExcellent
	case v < good:
		return RatingGood
	case v < average:
		return RatingAverage
	default:
		return ceiling
	}
}

func rateEVToEBITDA(ratio float64) string {
	switch {
	case ratio < 8:
		return "UNDERVALUED"
	case ratio < 12:
		return "FAIR"
	case ratio < 15:
		return "EXPENSIVE"
	default:
		return "OVERVALUED"
	}
}

func rateGrahamDiscount(discount float64) string {
	switch {
	case discount > 30:
		return "STRONG_UNDERVALUED"
	case discount > 0:
		return "UNDERVALUED"
	case discount > -20:
		return "FAIR"
	default:
		return "OVERVALUED"
	}
}

// ratePiotroski rates a score on the nine-point F-Score scale.
func ratePiotroski(score int) string {
	switch {
	case score >= 8:
		return "STRONG"
	case score >= 6:
		return "GOOD"
	case score >= 4:
		return "AVERAGE"
	default:
		return "WEAK"
	}
}

func rateMagicFormula(earningsYield, roic float64) string {
	switch {
	case earningsYield > 10 && roic > 15:
		return "HIGH_QUALITY_VALUE"
	case earningsYield > 7 || roic > 12:
		if roic > earningsYield {
			return "QUALITY"
		}
		return "VALUE"
	default:
		return "AVOID"
	}
}
