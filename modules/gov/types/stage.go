package types

// OperationStage is the position of a signed operation in the apply state machine.
// Stages only advance; any failure ends the run with the stage it failed at.
type OperationStage int

const (
	StageReceived OperationStage = iota
	StageSignatureVerified
	StageDecoded
	StageProtocolValidated
	StageApplied
)

var stageNames = map[OperationStage]string{
	StageReceived:          "received",
	StageSignatureVerified: "signature_verified",
	StageDecoded:           "decoded",
	StageProtocolValidated: "protocol_validated",
	StageApplied:           "applied",
}

func (s OperationStage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}
