package http

// SendRequest is the body of POST /send.
type SendRequest struct {
	Recipient string `json:"recipient" validate:"required,e164"`
	Body      string `json:"body" validate:"required,min=1,max=160"`
}

// SendResponse reports the terminal status of an attempt.
type SendResponse struct {
	Status    string `json:"status"`
	Recipient string `json:"recipient"`
	Reason    string `json:"reason"`
}

// GenericErrorResponse is the error envelope shared by all endpoints.
type GenericErrorResponse struct {
	Error string `json:"error"`
}
