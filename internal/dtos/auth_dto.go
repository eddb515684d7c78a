package dtos

import "github.com/justsurfingit/job-application-tracker/internal/models"

type SignUpRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ProfileRequest struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url" binding:"omitempty,url"`
}

type ProfileResponse struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type AuthResponse struct {
	Token   string          `json:"token"`
	Account ProfileResponse `json:"account"`
}

func NewProfileResponse(a models.Account) ProfileResponse {
	return ProfileResponse{ID: a.ID, Email: a.Email, DisplayName: a.DisplayName, AvatarURL: a.AvatarURL}
}
