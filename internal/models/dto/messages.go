package dto

import "github.com/messagely/messagely-be/internal/models"

type SendMessageRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

type MessageResponse struct {
	Message models.Message `json:"message"`
}

type MessageDetailResponse struct {
	Message models.MessageDetail `json:"message"`
}

type ReadReceiptResponse struct {
	Message models.ReadReceipt `json:"message"`
}

type OutboundMessagesResponse struct {
	Messages []models.OutboundMessage `json:"messages"`
}

type InboundMessagesResponse struct {
	Messages []models.InboundMessage `json:"messages"`
}

type UsersResponse struct {
	Users []models.UserSummary `json:"users"`
}

type UserResponse struct {
	User models.User `json:"user"`
}
