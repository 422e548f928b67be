// Package k8s wraps the cluster API operations that run after installation:
// service account setup for workload identity and route discovery.
package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// RoleARNAnnotation marks a service account with the IAM role it assumes
// through the pod identity webhook.
const RoleARNAnnotation = "eks.amazonaws.com/role-arn"

var (
	routeGVR = schema.GroupVersionResource{
		Group: "route.openshift.io", Version: "v1", Resource: "routes",
	}
	authenticationGVR = schema.GroupVersionResource{
		Group: "config.openshift.io", Version: "v1", Resource: "authentications",
	}
)

// Client wraps Kubernetes API operations against a provisioned cluster.
type Client struct {
	clientset kubernetes.Interface
	dynamic   dynamic.Interface
}

// NewClient creates a new Kubernetes client from a kubeconfig file.
func NewClient(kubeconfigPath string) (*Client, error) {
	config, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
	}
	return newClient(config)
}

func newClient(config *rest.Config) (*Client, error) {
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	return &Client{
		clientset: clientset,
		dynamic:   dynamicClient,
	}, nil
}

// EnsureNamespace creates the namespace if it does not exist.
func (c *Client) EnsureNamespace(ctx context.Context, name string) error {
	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}
	_, err := c.clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create namespace %s: %w", name, err)
	}
	return nil
}

// EnsureServiceAccount creates the service account if it does not exist.
func (c *Client) EnsureServiceAccount(ctx context.Context, namespace, name string) error {
	sa := &corev1.ServiceAccount{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
	}
	_, err := c.clientset.CoreV1().ServiceAccounts(namespace).Create(ctx, sa, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create service account %s/%s: %w", namespace, name, err)
	}
	return nil
}

// AnnotateServiceAccount sets the annotation on the service account,
// preserving any other annotations already present.
func (c *Client) AnnotateServiceAccount(ctx context.Context, namespace, name, key, value string) error {
	sa, err := c.clientset.CoreV1().ServiceAccounts(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get service account %s/%s: %w", namespace, name, err)
	}

	if sa.Annotations == nil {
		sa.Annotations = map[string]string{}
	}
	if sa.Annotations[key] == value {
		return nil
	}
	sa.Annotations[key] = value

	_, err = c.clientset.CoreV1().ServiceAccounts(namespace).Update(ctx, sa, metav1.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("failed to annotate service account %s/%s: %w", namespace, name, err)
	}
	return nil
}

// RouteHost returns the host the OpenShift router assigned to a route.
func (c *Client) RouteHost(ctx context.Context, namespace, name string) (string, error) {
	route, err := c.dynamic.Resource(routeGVR).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get route %s/%s: %w", namespace, name, err)
	}

	host, found, err := unstructured.NestedString(route.Object, "spec", "host")
	if err != nil || !found || host == "" {
		return "", fmt.Errorf("route %s/%s has no host", namespace, name)
	}
	return host, nil
}

// ServiceAccountIssuer returns the issuer URL from the cluster
// authentication config. An empty issuer means the cluster was not set up
// for workload identity, which callers must treat as a missing prerequisite.
func (c *Client) ServiceAccountIssuer(ctx context.Context) (string, error) {
	auth, err := c.dynamic.Resource(authenticationGVR).Get(ctx, "cluster", metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get cluster authentication config: %w", err)
	}

	issuer, found, err := unstructured.NestedString(auth.Object, "spec", "serviceAccountIssuer")
	if err != nil {
		return "", fmt.Errorf("failed to read service account issuer: %w", err)
	}
	if !found || issuer == "" {
		return "", fmt.Errorf("cluster has no service account issuer configured, workload identity is unavailable")
	}
	return issuer, nil
}

// ServerVersion returns the version reported by the cluster API, proving
// the kubeconfig still works.
func (c *Client) ServerVersion() (string, error) {
	info, err := c.clientset.Discovery().ServerVersion()
	if err != nil {
		return "", fmt.Errorf("failed to reach cluster API: %w", err)
	}
	return info.GitVersion, nil
}
