package constant

const (
	// DefaultTokenType is the token type marker returned in authentication responses.
	DefaultTokenType = "BEARER"

	// DefaultUserRole is assigned when registration does not specify a role.
	DefaultUserRole = "USER"

	// AuthorizationHeader and BearerPrefix describe the access token header transport.
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)
