package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wes/paca/internal/database"
	"github.com/wes/paca/internal/payment"
	"github.com/wes/paca/internal/tzclock"
)

const (
	SettingTimezone     = "timezone"
	SettingBusinessName = "business_name"
	SettingStripeAPIKey = "stripe_api_key"
)

var settingKeys = []string{SettingBusinessName, SettingStripeAPIKey, SettingTimezone}

// DisplayZone is the zone civil times are read and shown in: PACA_TIMEZONE, then the
// stored setting, then "auto".
func (s *TimesheetService) DisplayZone(ctx context.Context) string {
	if s.cfg.Timezone != "" {
		return s.cfg.Timezone
	}
	if v, err := s.db.GetSetting(ctx, SettingTimezone); err == nil && v != "" {
		return v
	}
	return tzclock.AutoZone
}

func (s *TimesheetService) Clock() *tzclock.Clock {
	return s.clock
}

func (s *TimesheetService) BusinessName(ctx context.Context) string {
	if s.cfg.BusinessName != "" {
		return s.cfg.BusinessName
	}
	v, _ := s.db.GetSetting(ctx, SettingBusinessName)
	return v
}

// Settings returns every known setting, stored or not.
func (s *TimesheetService) Settings(ctx context.Context) (map[string]string, error) {
	stored, err := s.db.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(settingKeys))
	for _, k := range settingKeys {
		out[k] = stored[k]
	}
	if out[SettingTimezone] == "" {
		out[SettingTimezone] = tzclock.AutoZone
	}
	return out, nil
}

func (s *TimesheetService) SetSetting(ctx context.Context, name, value string) error {
	value = strings.TrimSpace(value)
	switch name {
	case SettingTimezone:
		if value == "" {
			value = tzclock.AutoZone
		}
		if !s.clock.Known(value) {
			return fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, value)
		}
	case SettingBusinessName, SettingStripeAPIKey:
	default:
		keys := append([]string(nil), settingKeys...)
		sort.Strings(keys)
		return fmt.Errorf("%w: unknown setting %q (known: %s)", ErrInvalidInput, name, strings.Join(keys, ", "))
	}

	if err := s.db.SetSetting(ctx, name, value); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	if name == SettingStripeAPIKey && !s.paymentsInjected {
		s.payments = nil
	}
	return nil
}

// paymentProvider returns the injected provider, or builds a cached Stripe client from
// STRIPE_API_KEY or the stored key.
func (s *TimesheetService) paymentProvider(ctx context.Context) (payment.Provider, error) {
	if s.payments != nil {
		return s.payments, nil
	}

	key := s.cfg.StripeAPIKey
	if key == "" {
		v, err := s.db.GetSetting(ctx, SettingStripeAPIKey)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		key = v
	}

	stripe, err := payment.NewStripeProvider(key, nil, s.log)
	if err != nil {
		return nil, err
	}
	s.payments = payment.NewCached(stripe, s.cfg.InvoiceCacheTTL)
	return s.payments, nil
}
