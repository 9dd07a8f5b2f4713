package contract

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/leicam1995/teste-api-ebac/internal/httpclient"
)

// NegativeOutcome classifies the answer to a request the service should
// reject.
type NegativeOutcome int

const (
	// Rejected is a 4xx: the service enforced the contract.
	Rejected NegativeOutcome = iota
	// AcceptedNonCompliant is a 2xx: the service was lenient.
	AcceptedNonCompliant
	// TransportError means no response was received.
	TransportError
)

func (o NegativeOutcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case AcceptedNonCompliant:
		return "accepted-noncompliant"
	case TransportError:
		return "transport-error"
	}
	return fmt.Sprintf("NegativeOutcome(%d)", int(o))
}

// ClassifyNegative maps the result of Client.Send to a NegativeOutcome. Any
// status other than 2xx or 4xx is an error, as is an error that is not a
// transport or status failure.
func ClassifyNegative(resp *httpclient.Response, err error) (NegativeOutcome, error) {
	var te *httpclient.TransportError
	if errors.As(err, &te) {
		return TransportError, err
	}
	var se *httpclient.StatusError
	if err != nil && !errors.As(err, &se) {
		return 0, err
	}
	if resp == nil {
		return 0, errors.New("no response to classify")
	}
	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return Rejected, nil
	case resp.IsSuccess():
		return AcceptedNonCompliant, nil
	}
	return 0, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, resp.Body)
}

// DeleteOutcome classifies the answer to a DELETE.
type DeleteOutcome int

const (
	// Deleted means the entity was removed (or the service acknowledged the
	// delete without persisting).
	Deleted DeleteOutcome = iota
	// Conflict means the entity is referenced elsewhere, e.g. a ServeRest
	// user owning a cart.
	Conflict
	// NotFound means there was nothing to delete.
	NotFound
)

func (o DeleteOutcome) String() string {
	switch o {
	case Deleted:
		return "deleted"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not-found"
	}
	return fmt.Sprintf("DeleteOutcome(%d)", int(o))
}

// ServeRest delete messages.
const (
	MsgDeleted        = "Registro excluído com sucesso"
	MsgNothingDeleted = "Nenhum registro excluído"
	MsgDeleteWithCart = "Não é permitido excluir usuário com carrinho cadastrado"
)

// ClassifyDelete maps a ServeRest DELETE response to exactly one
// DeleteOutcome. A 200 must say MsgDeleted (Deleted) or MsgNothingDeleted
// (NotFound); a 400 must carry both MsgDeleteWithCart and idCarrinho
// (Conflict); a 404 is NotFound. Anything else is an error.
func ClassifyDelete(resp *httpclient.Response) (DeleteOutcome, error) {
	if resp == nil {
		return 0, errors.New("no response to classify")
	}
	msg := resp.Get("message").String()
	switch resp.StatusCode {
	case http.StatusOK:
		switch msg {
		case MsgDeleted:
			return Deleted, nil
		case MsgNothingDeleted:
			return NotFound, nil
		}
		return 0, fmt.Errorf("delete answered 200 with message %q: %s", msg, resp.Body)
	case http.StatusBadRequest:
		if msg != MsgDeleteWithCart {
			return 0, fmt.Errorf("delete rejected with status 400: %q", msg)
		}
		if resp.Get("idCarrinho").String() == "" {
			return 0, fmt.Errorf("cart conflict without idCarrinho: %s", resp.Body)
		}
		return Conflict, nil
	case http.StatusNotFound:
		return NotFound, nil
	}
	return 0, fmt.Errorf("unexpected delete status %d: %s", resp.StatusCode, resp.Body)
}

// ClassifyDeleteStatus classifies a DELETE by status alone, for services
// whose delete answers carry no message (JSONPlaceholder returns 200 {}).
// 200 is Deleted and 404 NotFound; anything else is an error.
func ClassifyDeleteStatus(resp *httpclient.Response) (DeleteOutcome, error) {
	if resp == nil {
		return 0, errors.New("no response to classify")
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return Deleted, nil
	case http.StatusNotFound:
		return NotFound, nil
	}
	return 0, fmt.Errorf("unexpected delete status %d: %s", resp.StatusCode, resp.Body)
}
