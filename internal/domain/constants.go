package domain

const (
	RoleVendor  = "VENDOR"
	RolePartner = "PARTNER"
	RoleAdmin   = "ADMIN"
)

const (
	PartnerStatusPending   = "PENDING"
	PartnerStatusActive    = "ACTIVE"
	PartnerStatusSuspended = "SUSPENDED"
)

const (
	PartnerTierStandard = "STANDARD"
	PartnerTierBronze   = "BRONZE"
	PartnerTierSilver   = "SILVER"
	PartnerTierGold     = "GOLD"
	PartnerTierPlatinum = "PLATINUM"
)

const (
	CampaignStatusDraft    = "DRAFT"
	CampaignStatusActive   = "ACTIVE"
	CampaignStatusPaused   = "PAUSED"
	CampaignStatusArchived = "ARCHIVED"
)

const (
	EnrollmentStatusPending  = "PENDING"
	EnrollmentStatusApproved = "APPROVED"
	EnrollmentStatusRejected = "REJECTED"
)

const (
	CommissionFlat       = "FLAT"
	CommissionPercentage = "PERCENTAGE"
	CommissionTiered     = "TIERED"
)

// Tier bucketing basis. Cumulative values are taken over the lifetime of the
// (partner, campaign) pair, using the value BEFORE the conversion being priced.
const (
	TierBasisGMV         = "GMV"
	TierBasisConversions = "CONVERSIONS"
)

const (
	AttributionLastClick    = "LAST_CLICK"
	AttributionFirstClick   = "FIRST_CLICK"
	AttributionUnattributed = "UNATTRIBUTED"
)

const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

const (
	ConversionStatusPending  = "PENDING"
	ConversionStatusApproved = "APPROVED"
	ConversionStatusRejected = "REJECTED"
)

const (
	PayoutStatusPending    = "PENDING"
	PayoutStatusProcessing = "PROCESSING"
	PayoutStatusCompleted  = "COMPLETED"
	PayoutStatusFailed     = "FAILED"
)
