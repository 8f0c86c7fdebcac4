package types

// governance relay events
const (
	EventTypeGovOperation        = "gov_operation"
	EventTypeGovOperationNoop    = "gov_operation_noop"
	EventTypeProtocolInitialized = "protocol_initialized"

	AttributeKeyProtocolID  = "protocol_id"
	AttributeKeyTarget      = "target_protocol"
	AttributeKeyOperation   = "operation"
	AttributeKeyFingerprint = "fingerprint"
	AttributeKeyNonce       = "nonce"
	AttributeKeySignerCount = "signer_count"
	AttributeKeyExecutor    = "executor"
	AttributeKeyKeeperCount = "keeper_count"

	AttributeValueCategory = ModuleName
)
