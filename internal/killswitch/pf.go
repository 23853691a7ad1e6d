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

// PF writes the full rule set to a file and loads it with a single pfctl
// invocation. Disabling flushes back to pf's default-accept state.
type PF struct {
	runner      utils.CommandRunner
	rulePath    string
	backupPath  string
	customRules []string
	device      DeviceResolver
	logger      *zap.Logger
}

func NewPF(runner utils.CommandRunner, dir cache.Dir, customRules []string, device DeviceResolver, logger *zap.Logger) *PF {
	return &PF{
		runner:      runner,
		rulePath:    dir.FirewallRuleFile(),
		backupPath:  dir.FirewallBackup(),
		customRules: customRules,
		device:      device,
		logger:      logger,
	}
}

func (b *PF) Enable(proto domain.Protocol, server domain.LogicalServer) error {
	if err := b.backup(); err != nil {
		return err
	}

	device, err := b.device()
	if err != nil {
		return fmt.Errorf("cannot resolve tunnel device: %w", err)
	}

	rules := buildPFRules(proto, server, device)
	rules = append(rules, b.customRules...)

	contents := strings.Join(rules, "\n") + "\n"
	if err := os.WriteFile(b.rulePath, []byte(contents), 0o600); err != nil {
		return fmt.Errorf("unable to write pf rule file: %w", err)
	}

	if err := b.runner.Run("pfctl", "-f", b.rulePath); err != nil {
		return fmt.Errorf("failed to load pf rules: %w", err)
	}
	if err := b.runner.Run("pfctl", "-E"); err != nil {
		return fmt.Errorf("failed to enable pf: %w", err)
	}

	b.logger.Info("applied pf killswitch rules",
		zap.String("protocol", proto.String()),
		zap.String("device", device),
		zap.Int("rules", len(rules)))
	return nil
}

func (b *PF) Disable() error {
	if err := b.runner.Run("pfctl", "-F", "all"); err != nil {
		return fmt.Errorf("failed to flush pf rules: %w", err)
	}
	b.logger.Info("flushed pf rules")
	return nil
}

func (b *PF) backup() error {
	if _, err := os.Stat(b.backupPath); err == nil {
		b.logger.Debug("firewall backup already exists, refusing to overwrite",
			zap.String("path", b.backupPath))
		return nil
	}

	out, err := b.runner.Output("pfctl", "-sr")
	if err != nil {
		return fmt.Errorf("unable to dump current pf rules: %w", err)
	}
	if err := os.WriteFile(b.backupPath, out, 0o600); err != nil {
		return fmt.Errorf("unable to write firewall backup: %w", err)
	}
	return nil
}

func buildPFRules(proto domain.Protocol, server domain.LogicalServer, device string) []string {
	rules := []string{
		"block drop all",
		"pass on lo0",
		fmt.Sprintf("pass on %s", device),
	}

	// pf has no equivalent of iptables' match-by-port-only allow here, so
	// each (entry address, port) pair gets an explicit pass rule.
	for _, port := range proto.DefaultPorts() {
		for _, ip := range server.EntryIPs() {
			rules = append(rules,
				fmt.Sprintf("pass out proto %s from any to %s port %d", proto, ip, port))
		}
	}

	return rules
}
