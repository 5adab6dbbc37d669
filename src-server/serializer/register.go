package serializer

type RegisterInput struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type ErrorRecord struct {
	Error string `json:"error"`
}

type DetailRecord struct {
	Detail string `json:"detail"`
}
