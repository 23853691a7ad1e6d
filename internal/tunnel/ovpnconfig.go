package tunnel

import (
	"strings"
	"text/template"

	"tunneld/internal/domain"
)

var configTemplate = template.Must(template.New("openvpn").Parse(`client
dev tun
proto {{.Protocol}}
{{- range .Endpoints}}
remote {{.IP}} {{.Port}}
{{- end}}
remote-random
resolv-retry infinite
nobind
persist-key
persist-tun
auth-user-pass {{.CredentialsPath}}
auth-nocache
verb 3
{{- if .UpdateResolvConf}}
script-security 2
up {{.UpdateResolvConf}}
down {{.UpdateResolvConf}}
{{- end}}
`))

type configData struct {
	Protocol         domain.Protocol
	Endpoints        []domain.Endpoint
	CredentialsPath  string
	UpdateResolvConf string
}

// RenderConfig produces the tunnel subprocess configuration for a server: one
// remote line per (entry address, default port) pair, the full cross product.
func RenderConfig(server domain.LogicalServer, proto domain.Protocol, credentialsPath, updateResolvConf string) (string, error) {
	var endpoints []domain.Endpoint
	for _, ip := range server.EntryIPs() {
		for _, port := range proto.DefaultPorts() {
			endpoints = append(endpoints, domain.Endpoint{IP: ip, Port: port})
		}
	}

	var buf strings.Builder
	err := configTemplate.Execute(&buf, configData{
		Protocol:         proto,
		Endpoints:        endpoints,
		CredentialsPath:  credentialsPath,
		UpdateResolvConf: updateResolvConf,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
