package domain

// 主题/隐私/套餐/追思类型 在校验层和存储层共用同一套定义，避免两边漂移

type Theme string

const (
	ThemeClassic     Theme = "CLASSIC"
	ThemeElegant     Theme = "ELEGANT"
	ThemeModern      Theme = "MODERN"
	ThemeNature      Theme = "NATURE"
	ThemePeaceful    Theme = "PEACEFUL"
	ThemeCelebration Theme = "CELEBRATION"
	ThemeRemembrance Theme = "REMEMBRANCE"
	ThemeSunset      Theme = "SUNSET"
	ThemeFloral      Theme = "FLORAL"
	ThemeMinimalist  Theme = "MINIMALIST"
)

var themes = map[Theme]struct{}{
	ThemeClassic: {}, ThemeElegant: {}, ThemeModern: {}, ThemeNature: {},
	ThemePeaceful: {}, ThemeCelebration: {}, ThemeRemembrance: {},
	ThemeSunset: {}, ThemeFloral: {}, ThemeMinimalist: {},
}

func (t Theme) Valid() bool { _, ok := themes[t]; return ok }

type Privacy string

const (
	PrivacyPublic     Privacy = "PUBLIC"
	PrivacyPrivate    Privacy = "PRIVATE"
	PrivacyInviteOnly Privacy = "INVITE_ONLY"
)

func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacyInviteOnly:
		return true
	}
	return false
}

type Plan string

const (
	PlanFree           Plan = "FREE"
	PlanPremiumMonthly Plan = "PREMIUM_MONTHLY"
	PlanPremiumAnnual  Plan = "PREMIUM_ANNUAL"
	PlanLifetime       Plan = "LIFETIME"
)

type TributeType string

const (
	TributeMessage    TributeType = "MESSAGE"
	TributeStory      TributeType = "STORY"
	TributeMemory     TributeType = "MEMORY"
	TributeCondolence TributeType = "CONDOLENCE"
)

func (t TributeType) Valid() bool {
	switch t {
	case TributeMessage, TributeStory, TributeMemory, TributeCondolence:
		return true
	}
	return false
}
