package dto

type AuthenticationResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	TokenType    string   `json:"tokenType"`
	ExpiresIn    int      `json:"expiresIn"`
}
