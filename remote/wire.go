package remote

// Wire types for the document-chat service protocol. Field names follow the
// service's JSON contract exactly.

type uploadResponse struct {
	DocID string `json:"doc_id"`
	Pages int    `json:"pages"`
}

type queryRequest struct {
	DocID    string `json:"doc_id"`
	Question string `json:"question"`
}

type queryResponse struct {
	Answer string `json:"answer"`
}

type saveRequest struct {
	UserID       string `json:"user_id"`
	FromUser     string `json:"from_user"`
	Text         string `json:"text"`
	DocID        string `json:"docId,omitempty"`
	UploadedName string `json:"uploadedName,omitempty"`
}

type chatGroup struct {
	Messages     []chatMessage `json:"messages"`
	DocID        string        `json:"docId"`
	UploadedName string        `json:"uploadedName"`
}

type chatMessage struct {
	From string `json:"from"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Chats []chatGroup `json:"chats"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
