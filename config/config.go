/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package config

import "reflect"

// Config is a common interface for configuration objects that may be used by Loader.
type Config interface {
	SetProviderDefaults(dp DataProvider)
	Set(dp DataProvider) error
}

// KeyPrefixProvider is an interface for configuration objects that bind
// their parameters under a dedicated key prefix.
type KeyPrefixProvider interface {
	KeyPrefix() string
}

// CallSetProviderDefaultsForFields walks all exported non-nil fields of the passed object
// that implement the Config interface and calls SetProviderDefaults() on each of them.
func CallSetProviderDefaultsForFields(obj interface{}, dp DataProvider) {
	_ = forEachConfigField(obj, dp, func(c Config, cDp DataProvider) error {
		c.SetProviderDefaults(cDp)
		return nil
	})
}

// CallSetForFields walks all exported non-nil fields of the passed object
// that implement the Config interface and calls Set() on each of them.
// The first error stops the walk.
func CallSetForFields(obj interface{}, dp DataProvider) error {
	return forEachConfigField(obj, dp, func(c Config, cDp DataProvider) error {
		return c.Set(cDp)
	})
}

// forEachConfigField dispatches fn to every exported non-nil field implementing Config.
// Fields that also implement KeyPrefixProvider get a data provider scoped to their prefix.
func forEachConfigField(obj interface{}, dp DataProvider, fn func(c Config, cDp DataProvider) error) error {
	el := reflect.ValueOf(obj).Elem()
	for i := 0; i < el.NumField(); i++ {
		if !el.Type().Field(i).IsExported() {
			continue
		}
		v := el.Field(i).Interface()
		if reflect.ValueOf(v).Kind() == reflect.Ptr && reflect.ValueOf(v).IsNil() {
			continue
		}
		c, ok := v.(Config)
		if !ok {
			continue
		}
		cDp := dp
		if kpp, ok := v.(KeyPrefixProvider); ok && kpp.KeyPrefix() != "" {
			cDp = NewKeyPrefixedDataProvider(dp, kpp.KeyPrefix())
		}
		if err := fn(c, cDp); err != nil {
			return err
		}
	}
	return nil
}
