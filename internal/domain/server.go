package domain

// Features is a bitmask of capabilities a logical server advertises.
type Features uint8

const (
	FeatureSecureCore Features = 1 << iota
	FeatureTor
	FeatureP2P
	FeatureStreaming
	FeatureIPv6
)

func (f Features) Contains(other Features) bool {
	return f&other == other
}

// Names lists the set bits using the configuration file spelling.
func (f Features) Names() []string {
	var names []string
	for _, entry := range []struct {
		bit  Features
		name string
	}{
		{FeatureSecureCore, "secure-core"},
		{FeatureTor, "tor"},
		{FeatureP2P, "p2p"},
		{FeatureStreaming, "streaming"},
		{FeatureIPv6, "ipv6"},
	} {
		if f&entry.bit != 0 {
			names = append(names, entry.name)
		}
	}
	return names
}

// PhysicalServer is one concrete machine behind a logical server.
type PhysicalServer struct {
	EntryIP string `json:"EntryIP"`
}

// LogicalServer is a directory record. Supplied read-only by the directory
// collaborator; the daemon only needs id→record lookup and entry addresses.
type LogicalServer struct {
	ID          string           `json:"ID"`
	Name        string           `json:"Name"`
	ExitCountry string           `json:"ExitCountry"`
	Tier        int              `json:"Tier"`
	Features    Features         `json:"Features"`
	Score       float64          `json:"Score"`
	Status      int              `json:"Status"`
	Load        int              `json:"Load"`
	Servers     []PhysicalServer `json:"Servers"`
}

// EntryIPs returns the entry address of every physical server, in order.
func (s LogicalServer) EntryIPs() []string {
	ips := make([]string, 0, len(s.Servers))
	for _, ps := range s.Servers {
		ips = append(ips, ps.EntryIP)
	}
	return ips
}
