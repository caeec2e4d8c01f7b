package sdk

// Fault is the taxonomy of blame a protocol run can attach to a party.
// MissingMessage and CorruptedMessage are detected by the message-routing
// layer in Round; ProtocolFault is raised by a round's own verification
// logic (a bad ZK proof, a VSS share that doesn't open, and so on).
type Fault int

const (
	MissingMessage Fault = iota
	CorruptedMessage
	ProtocolFault
)

func (f Fault) String() string {
	switch f {
	case MissingMessage:
		return "missing message"
	case CorruptedMessage:
		return "corrupted message"
	case ProtocolFault:
		return "protocol fault"
	default:
		return "unknown fault"
	}
}
