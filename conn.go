package mesh

import (
	. "github.com/stevegt/goadapt"
	"github.com/stevegt/mesh/num"
)

// Connection is a directed weighted edge between two groups. It owns
// five matrices of shape From.Size() x To.Size(). A Connection lives in
// its network's registry; the groups at either end refer to it through
// a Link.
type Connection struct {
	ID            int
	From          *Group
	To            *Group
	Weights       *num.Matrix
	Gradients     *num.Matrix
	PrevGradients *num.Matrix
	PrevDeltas    *num.Matrix
	// Dynamic holds Rprop update values or delta-bar-delta learning
	// rates, one per weight.
	Dynamic *num.Matrix
	// Frozen connections are never updated.
	Frozen bool
	// idx is the connection's position in the registry.
	idx int
}

func newConnection(id int, from, to *Group) (c *Connection) {
	Assert(from != nil && to != nil, "connection %d has a missing end", id)
	rows, cols := from.Size(), to.Size()
	c = &Connection{
		ID:            id,
		From:          from,
		To:            to,
		Weights:       num.NewMatrix(rows, cols),
		Gradients:     num.NewMatrix(rows, cols),
		PrevGradients: num.NewMatrix(rows, cols),
		PrevDeltas:    num.NewMatrix(rows, cols),
		Dynamic:       num.NewMatrix(rows, cols),
	}
	return
}

// IsLoop reports whether c is a recurrent self connection.
func (c *Connection) IsLoop() bool {
	return c.From == c.To
}

// Link is one group's record of a connection. The outgoing record held
// by the source group and the incoming record held by the target group
// refer to the same Connection.
type Link struct {
	// Group is the group at the other end of the connection.
	Group *Group
	conn  *Connection
}

// Conn returns the connection this record refers to.
func (l *Link) Conn() *Connection {
	return l.conn
}

// Weights returns the connection's weight matrix.
func (l *Link) Weights() *num.Matrix {
	return l.conn.Weights
}

// Gradients returns the connection's gradient matrix.
func (l *Link) Gradients() *num.Matrix {
	return l.conn.Gradients
}

// PrevGradients returns the connection's previous gradient matrix.
func (l *Link) PrevGradients() *num.Matrix {
	return l.conn.PrevGradients
}

// PrevDeltas returns the connection's previous weight delta matrix.
func (l *Link) PrevDeltas() *num.Matrix {
	return l.conn.PrevDeltas
}

// Dynamic returns the connection's dynamic parameter matrix.
func (l *Link) Dynamic() *num.Matrix {
	return l.conn.Dynamic
}

// Frozen reports whether the connection is frozen.
func (l *Link) Frozen() bool {
	return l.conn.Frozen
}
