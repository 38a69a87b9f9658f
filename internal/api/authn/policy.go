package authn

import (
	"github.com/routefleet/routerman/internal/api/domain"
)

// Policy names understood by Evaluate. Handlers attach one of these to a
// route; an unknown name always denies.
const (
	PolicyAdminOnly          = "AdminOnly"
	PolicyDeviceBootstrap    = "DeviceBootstrap"
	PolicyDeviceWithSerial   = "DeviceWithSerial"
	PolicyPublicProvisioning = "PublicProvisioning"
	PolicyPublicProviders    = "PublicProviders"
	PolicyCanRegisterDevice  = "CanRegisterDevice"
)

// Evaluate reports whether the identity satisfies the named policy. A nil
// identity never satisfies any policy.
func Evaluate(name string, id *domain.Identity) bool {
	if id == nil {
		return false
	}
	p, ok := policies[name]
	if !ok {
		return false
	}
	return p(id.Claims)
}

type predicate func(domain.ClaimSet) bool

var policies = map[string]predicate{
	PolicyAdminOnly:          isAdmin,
	PolicyDeviceBootstrap:    isBootstrap,
	PolicyDeviceWithSerial:   hasSerial,
	PolicyPublicProvisioning: publicProvisioning,
	PolicyPublicProviders:    publicProviders,
	PolicyCanRegisterDevice:  canRegisterDevice,
}

func isAdmin(c domain.ClaimSet) bool { return c.Role == domain.RoleAdmin }

func isBootstrap(c domain.ClaimSet) bool { return c.Type == domain.TypeBootstrap }

func hasSerial(c domain.ClaimSet) bool { return c.Serial != "" }

func isProvisioningType(c domain.ClaimSet) bool {
	return c.Type == domain.TypeBootstrap || c.Type == domain.TypeGeneric
}

// publicProvisioning admits any caller that can plausibly be a device mid
// provisioning: either it already knows its serial, or it is running on a
// bootstrap or generic credential.
func publicProvisioning(c domain.ClaimSet) bool {
	return hasSerial(c) || isProvisioningType(c)
}

// publicProviders extends provisioning access to provider integrations and
// administrators, since the provider catalogue is read by all of them.
func publicProviders(c domain.ClaimSet) bool {
	return publicProvisioning(c) || c.ProviderID > 0 || isAdmin(c)
}

func canRegisterDevice(c domain.ClaimSet) bool { return isProvisioningType(c) }
