package mesh

import (
	"github.com/sirupsen/logrus"
	"github.com/stevegt/mesh/array"
)

// Session holds a collection of networks, one of which is active.
type Session struct {
	networks *array.Array[*Network]
	Active   *Network
	log      *logrus.Logger
}

// NewSession returns an empty session whose networks log to log, or to
// the standard logger if log is nil.
func NewSession(log *logrus.Logger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{networks: array.New[*Network](), log: log}
}

// CreateNetwork adds a new network and makes it active.
func (s *Session) CreateNetwork(name string, kind Kind) (n *Network, err error) {
	if name == "" {
		return nil, configErrorf("network name must not be empty")
	}
	if s.Find(name) != nil {
		return nil, configErrorf("network already exists: %s", name)
	}
	n = NewNetwork(name, kind)
	n.SetLogger(s.log)
	s.networks.Add(n)
	s.Active = n
	return
}

// Add adds a network built elsewhere and makes it active.
func (s *Session) Add(n *Network) (err error) {
	if s.Find(n.name) != nil {
		return configErrorf("network already exists: %s", n.name)
	}
	s.networks.Add(n)
	s.Active = n
	return
}

// Find returns the named network, or nil.
func (s *Session) Find(name string) *Network {
	n, _ := s.networks.Find(name)
	return n
}

// Networks returns the networks in creation order.
func (s *Session) Networks() []*Network {
	return s.networks.Elements()
}

// SwitchNetwork makes the named network active.
func (s *Session) SwitchNetwork(name string) (err error) {
	n := s.Find(name)
	if n == nil {
		return configErrorf("no such network: %s", name)
	}
	s.Active = n
	return
}

// DisposeNetwork removes the named network. Disposing the active
// network leaves no network active.
func (s *Session) DisposeNetwork(name string) (err error) {
	n := s.Find(name)
	if n == nil {
		return configErrorf("no such network: %s", name)
	}
	s.networks.Remove(n)
	if s.Active == n {
		s.Active = nil
	}
	return
}
