package protocol

// Return is the outcome of one handler invocation. A nil Control means no
// token is echoed back (rendered as "." on the wire); an empty Payload
// renders as an empty field.
type Return struct {
	Success bool
	Payload string
	Control *ControlBlock
}

func Ok() Return {
	return Return{Success: true}
}

func OkPayload(payload string) Return {
	return Return{Success: true, Payload: payload}
}

func OkBlock(cb ControlBlock) Return {
	return Return{Success: true, Control: &cb}
}

func OkPayloadBlock(payload string, cb ControlBlock) Return {
	return Return{Success: true, Payload: payload, Control: &cb}
}

func Failed(payload string) Return {
	return Return{Success: false, Payload: payload}
}
