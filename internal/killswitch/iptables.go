package killswitch

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"tunneld/internal/cache"
	"tunneld/internal/domain"
	"tunneld/utils"
)

// Iptables applies the killswitch one rule at a time through the iptables
// binary and restores the original ruleset via iptables-save/-restore.
type Iptables struct {
	runner      utils.CommandRunner
	backupPath  string
	customRules []string
	device      DeviceResolver
	logger      *zap.Logger
}

func NewIptables(runner utils.CommandRunner, dir cache.Dir, customRules []string, device DeviceResolver, logger *zap.Logger) *Iptables {
	return &Iptables{
		runner:      runner,
		backupPath:  dir.FirewallBackup(),
		customRules: customRules,
		device:      device,
		logger:      logger,
	}
}

func (b *Iptables) Enable(proto domain.Protocol, server domain.LogicalServer) error {
	if err := b.backup(); err != nil {
		return err
	}

	device, err := b.device()
	if err != nil {
		return fmt.Errorf("cannot resolve tunnel device: %w", err)
	}

	rules := buildIptablesRules(proto, device)
	rules = append(rules, b.customRules...)

	for _, rule := range rules {
		if err := b.runner.Run("iptables", strings.Fields(rule)...); err != nil {
			return fmt.Errorf("failed to apply rule %q: %w", rule, err)
		}
	}

	b.logger.Info("applied iptables killswitch rules",
		zap.String("protocol", proto.String()),
		zap.String("device", device),
		zap.Int("rules", len(rules)))
	return nil
}

func (b *Iptables) Disable() error {
	contents, err := os.ReadFile(b.backupPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Never enabled in this installation; nothing to restore.
			b.logger.Warn("no firewall backup found, leaving rules untouched",
				zap.String("path", b.backupPath))
			return nil
		}
		return fmt.Errorf("cannot read firewall backup: %w", err)
	}

	if err := b.runner.RunInput(contents, "iptables-restore"); err != nil {
		return fmt.Errorf("failed to restore firewall backup, your backup file is at %s: %w", b.backupPath, err)
	}

	b.logger.Info("restored iptables backup", zap.String("path", b.backupPath))
	return nil
}

func (b *Iptables) backup() error {
	if _, err := os.Stat(b.backupPath); err == nil {
		b.logger.Debug("firewall backup already exists, refusing to overwrite",
			zap.String("path", b.backupPath))
		return nil
	}

	out, err := b.runner.Output("iptables-save")
	if err != nil {
		return fmt.Errorf("unable to dump current iptables rules: %w", err)
	}
	if err := os.WriteFile(b.backupPath, out, 0o600); err != nil {
		return fmt.Errorf("unable to write firewall backup: %w", err)
	}
	return nil
}

func buildIptablesRules(proto domain.Protocol, device string) []string {
	rules := []string{
		// Start from a clean slate with everything denied.
		"-F",
		"-P INPUT DROP",
		"-P OUTPUT DROP",
		"-P FORWARD DROP",
		// Loopback stays open.
		"-A OUTPUT -o lo -j ACCEPT",
		"-A INPUT -i lo -j ACCEPT",
		// Everything over the tunnel interface is allowed.
		fmt.Sprintf("-A OUTPUT -o %s -j ACCEPT", device),
		fmt.Sprintf("-A INPUT -i %s -j ACCEPT", device),
		fmt.Sprintf("-A OUTPUT -o %s -m state --state ESTABLISHED,RELATED -j ACCEPT", device),
		fmt.Sprintf("-A INPUT -i %s -m state --state ESTABLISHED,RELATED -j ACCEPT", device),
	}

	// The tunnel itself must be able to reach the server on the default
	// ports of its transport.
	for _, port := range proto.DefaultPorts() {
		rules = append(rules,
			fmt.Sprintf("-A OUTPUT -p %[1]s -m %[1]s --dport %[2]d -j ACCEPT", proto, port),
			fmt.Sprintf("-A INPUT -p %[1]s -m %[1]s --sport %[2]d -j ACCEPT", proto, port),
		)
	}

	return rules
}
