package constants

// Environment variable keys.
const (
	EnvDBPath         = "STRATAGEM_DB"
	EnvServerAddr     = "STRATAGEM_ADDR"
	EnvOperatorSecret = "STRATAGEM_OPERATOR_SECRET"
	EnvTickInterval   = "STRATAGEM_TICK_INTERVAL"
	EnvTickBatchSize  = "STRATAGEM_TICK_BATCH_SIZE"
	EnvLogFile        = "STRATAGEM_LOG_FILE"
)

// HTTP headers and content types.
const (
	HeaderAuthorization = "Authorization"
	BearerPrefix        = "Bearer "
)

// Routes used by the backend router.
const (
	RouteAPIPrefix       = "/api"
	RouteHealth          = "/healthz"
	RouteState           = "/state"
	RouteNations         = "/nations"
	RouteWars            = "/wars"
	RouteWarByID         = "/wars/:warID"
	RouteWarBattles      = "/wars/:warID/battles"
	RouteWarBattle       = "/wars/:warID/battle"
	RouteWarCeasefire    = "/wars/:warID/ceasefire"
	RouteProposalRespond = "/ceasefires/:proposalID/respond"
	RouteAdminTick       = "/admin/tick"
)

// Common JSON response keys.
const (
	JSONKeyError   = "error"
	JSONKeyMessage = "message"
)

// Common error messages used across API handlers.
const (
	ErrInvalidRequest        = "Invalid request"
	ErrInvalidWarID          = "Invalid war ID"
	ErrInvalidProposalID     = "Invalid proposal ID"
	ErrWarNotFound           = "War not found"
	ErrWarNotActive          = "War is not active"
	ErrNotBelligerent        = "Nation is not a belligerent in this war"
	ErrInsufficientPoints    = "Insufficient tactical points"
	ErrInvalidAttackType     = "Invalid attack type"
	ErrInvalidRoll           = "Invalid battle roll"
	ErrWarStateConflict      = "War was modified concurrently; retry"
	ErrProposalNotFound      = "Ceasefire proposal not found"
	ErrProposalResolved      = "Ceasefire proposal already resolved"
	ErrNotProposalRecipient  = "Nation is not the proposal recipient"
	ErrPendingProposalExists = "A ceasefire proposal is already pending"
	ErrFailedFetchState      = "Failed to fetch game state"
	ErrFailedFetchNations    = "Failed to fetch nations"
	ErrFailedFetchWars       = "Failed to fetch wars"
	ErrFailedFetchBattles    = "Failed to fetch battle logs"
	ErrFailedFetchConfig     = "Failed to load game config"
	ErrOperatorTokenRequired = "Operator token required"
	ErrOperatorTokenInvalid  = "Invalid operator token"
)

// Logging field names.
const (
	LogFieldWarID    = "war_id"
	LogFieldNationID = "nation_id"
	LogFieldAddr     = "addr"
)
