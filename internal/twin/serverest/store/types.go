// Package store defines the ServeRest twin's state types and in-memory store.
package store

// User is a ServeRest /usuarios record. Administrador is the string "true"
// or "false", as the real service stores it.
type User struct {
	ID            string `json:"_id" yaml:"_id"`
	Nome          string `json:"nome" yaml:"nome"`
	Email         string `json:"email" yaml:"email"`
	Password      string `json:"password" yaml:"password"`
	Administrador string `json:"administrador" yaml:"administrador"`
}

// Cart is the subset of a ServeRest /carrinhos record the twin needs to
// refuse deleting users that still own a cart.
type Cart struct {
	ID              string `json:"_id" yaml:"_id"`
	IDUsuario       string `json:"idUsuario" yaml:"idUsuario"`
	PrecoTotal      int    `json:"precoTotal" yaml:"precoTotal"`
	QuantidadeTotal int    `json:"quantidadeTotal" yaml:"quantidadeTotal"`
}

// Messages returned by ServeRest, kept verbatim.
const (
	MsgLoginOK          = "Login realizado com sucesso"
	MsgLoginInvalid     = "Email e/ou senha inválidos"
	MsgCreated          = "Cadastro realizado com sucesso"
	MsgUpdated          = "Registro alterado com sucesso"
	MsgDeleted          = "Registro excluído com sucesso"
	MsgNothingDeleted   = "Nenhum registro excluído"
	MsgEmailInUse       = "Este email já está sendo usado"
	MsgUserNotFound     = "Usuário não encontrado"
	MsgDeleteWithCart   = "Não é permitido excluir usuário com carrinho cadastrado"
	MsgInvalidEmail     = "email deve ser um email válido"
	MsgInvalidAdminFlag = "administrador deve ser 'true' ou 'false'"
	MsgTokenRejected    = "Token de acesso ausente, inválido, expirado ou usuário do token não existe mais"
)
