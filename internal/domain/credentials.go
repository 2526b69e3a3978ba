package domain

// Credentials são os dados da conta de serviço usada para acessar o Ad Manager
type Credentials struct {
	ClientEmail string
	PrivateKey  string
	TokenURI    string
	NetworkCode string
}
