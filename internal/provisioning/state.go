package provisioning

// State holds inputs and results shared across phases. Earlier phases
// populate it, later phases read it; handlers seed the input fields from
// flags and environment variables before the pipeline runs.
type State struct {
	// PullSecret is the registry pull secret embedded into install
	// configurations, verbatim JSON.
	PullSecret string

	// SSHPublicKey is the authorized key embedded into install
	// configurations for node access.
	SSHPublicKey string

	// GitToken authenticates against the source-control API and is stored
	// in the CI secret bundle for in-cluster use.
	GitToken string

	// KubeconfigPath overrides the kubeconfig used to reach the secrets
	// cluster. Empty means the installer artifact bundle.
	KubeconfigPath string

	// BackendSecret and OAuthClientSecret override the generated portal
	// secrets when supplied by the operator.
	BackendSecret     string
	OAuthClientSecret string

	// ParentZoneID, ChildZoneID and NameServers record the delegation
	// result.
	ParentZoneID string
	ChildZoneID  string
	NameServers  []string

	// InstalledClusters lists the clusters confirmed installed this run.
	InstalledClusters []string

	// RobotUser and RobotToken are the registry robot credentials.
	RobotUser  string
	RobotToken string

	// PortalSecretARN and CISecretARN identify the stored secret bundles.
	PortalSecretARN string
	CISecretARN     string

	// WebhookSecret is the shared HMAC secret registered with every
	// repository webhook.
	WebhookSecret string

	// RoleARN is the IAM role assumed by the CI service account.
	RoleARN string

	// WebhookURL is the event listener endpoint the webhooks target.
	WebhookURL string
}

// NewState returns an empty state.
func NewState() *State {
	return &State{}
}
