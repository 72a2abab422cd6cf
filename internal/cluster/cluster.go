// Package cluster manages the lifecycle of the Redshift cluster that hosts
// the warehouse: create, describe, wait for availability and delete.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/redshift"
	"github.com/aws/aws-sdk-go-v2/service/redshift/types"

	"github.com/vvka-141/dwhetl/internal/poll"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// ErrClusterNotFound is returned when no cluster has the requested identifier.
var ErrClusterNotFound = fmt.Errorf("cluster not found: %w", dwh.ErrClusterAPI)

// API is the subset of the Redshift management client used here.
// *redshift.Client satisfies it.
type API interface {
	CreateCluster(ctx context.Context, params *redshift.CreateClusterInput, optFns ...func(*redshift.Options)) (*redshift.CreateClusterOutput, error)
	DescribeClusters(ctx context.Context, params *redshift.DescribeClustersInput, optFns ...func(*redshift.Options)) (*redshift.DescribeClustersOutput, error)
	DeleteCluster(ctx context.Context, params *redshift.DeleteClusterInput, optFns ...func(*redshift.Options)) (*redshift.DeleteClusterOutput, error)
}

var _ API = (*redshift.Client)(nil)

// Spec describes the cluster to provision.
type Spec struct {
	ID             string
	ClusterType    string
	NodeType       string
	NumNodes       int
	DBName         string
	MasterUser     string
	MasterPassword string
	Port           int
	IAMRoleARN     string
}

// MultiNode reports whether the spec asks for a multi-node cluster.
func (s Spec) MultiNode() bool {
	return s.ClusterType == "multi-node"
}

func (s Spec) createInput() *redshift.CreateClusterInput {
	in := &redshift.CreateClusterInput{
		ClusterIdentifier:  aws.String(s.ID),
		ClusterType:        aws.String(s.ClusterType),
		NodeType:           aws.String(s.NodeType),
		DBName:             aws.String(s.DBName),
		MasterUsername:     aws.String(s.MasterUser),
		MasterUserPassword: aws.String(s.MasterPassword),
	}
	// NumberOfNodes is rejected for single-node clusters.
	if s.MultiNode() {
		in.NumberOfNodes = aws.Int32(int32(s.NumNodes))
	}
	if s.Port > 0 {
		in.Port = aws.Int32(int32(s.Port))
	}
	if s.IAMRoleARN != "" {
		in.IamRoles = []string{s.IAMRoleARN}
	}
	return in
}

// Properties are the cluster attributes shown by `cluster status`.
type Properties struct {
	ClusterIdentifier string
	NodeType          string
	ClusterStatus     string
	MasterUsername    string
	DBName            string
	Endpoint          string
	Port              int
	NumberOfNodes     int
	VpcID             string
}

// Available reports whether the cluster accepts connections.
func (p *Properties) Available() bool {
	return p.ClusterStatus == dwh.ClusterStatusAvailable
}

// Rows returns the properties as ordered key/value pairs for display.
func (p *Properties) Rows() [][2]string {
	endpoint := p.Endpoint
	if endpoint != "" && p.Port > 0 {
		endpoint = endpoint + ":" + strconv.Itoa(p.Port)
	}
	return [][2]string{
		{"ClusterIdentifier", p.ClusterIdentifier},
		{"NodeType", p.NodeType},
		{"ClusterStatus", p.ClusterStatus},
		{"MasterUsername", p.MasterUsername},
		{"DBName", p.DBName},
		{"Endpoint", endpoint},
		{"NumberOfNodes", strconv.Itoa(p.NumberOfNodes)},
		{"VpcId", p.VpcID},
	}
}

func propertiesFrom(c types.Cluster) *Properties {
	p := &Properties{
		ClusterIdentifier: aws.ToString(c.ClusterIdentifier),
		NodeType:          aws.ToString(c.NodeType),
		ClusterStatus:     aws.ToString(c.ClusterStatus),
		MasterUsername:    aws.ToString(c.MasterUsername),
		DBName:            aws.ToString(c.DBName),
		NumberOfNodes:     int(aws.ToInt32(c.NumberOfNodes)),
		VpcID:             aws.ToString(c.VpcId),
	}
	if c.Endpoint != nil {
		p.Endpoint = aws.ToString(c.Endpoint.Address)
		p.Port = int(aws.ToInt32(c.Endpoint.Port))
	}
	return p
}

// Client wraps the management API with the operations the CLI needs.
type Client struct {
	api    API
	poller *poll.Poller
	logger dwh.Logger
}

// NewClient creates a Client. Cluster waits use the default poll budget.
// Panics if api or logger is nil.
func NewClient(api API, logger dwh.Logger) *Client {
	if api == nil {
		panic("api cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	backoff := poll.NewBackoff(dwh.DefaultWaitMaxAttempts,
		poll.WithInitialDelay(dwh.DefaultWaitInitialDelay),
		poll.WithMaxDelay(dwh.DefaultWaitMaxDelay),
	)
	return &Client{api: api, poller: poll.New(backoff), logger: logger}
}

// WithPoller returns a copy of the client that waits with poller.
func (c *Client) WithPoller(poller *poll.Poller) *Client {
	clone := *c
	clone.poller = poller
	return &clone
}

// Create requests a new cluster. The call returns as soon as the request is
// accepted; use Wait to block until the cluster is available.
func (c *Client) Create(ctx context.Context, spec Spec) (*Properties, error) {
	c.logger.Verbose("Creating %s cluster %q (%s)", spec.ClusterType, spec.ID, spec.NodeType)

	out, err := c.api.CreateCluster(ctx, spec.createInput())
	if err != nil {
		return nil, wrapAPIError("create", spec.ID, err)
	}
	if out.Cluster == nil {
		return &Properties{ClusterIdentifier: spec.ID}, nil
	}
	return propertiesFrom(*out.Cluster), nil
}

// Describe returns the current properties of cluster id.
func (c *Client) Describe(ctx context.Context, id string) (*Properties, error) {
	out, err := c.api.DescribeClusters(ctx, &redshift.DescribeClustersInput{
		ClusterIdentifier: aws.String(id),
	})
	if err != nil {
		return nil, wrapAPIError("describe", id, err)
	}
	if len(out.Clusters) == 0 {
		return nil, fmt.Errorf("%q: %w", id, ErrClusterNotFound)
	}
	return propertiesFrom(out.Clusters[0]), nil
}

// Wait polls until cluster id is available and returns its final properties.
func (c *Client) Wait(ctx context.Context, id string) (*Properties, error) {
	var props *Properties
	poller := c.poller.WithOnWait(func(attempt int, err error, delay time.Duration) {
		status := "unknown"
		if props != nil {
			status = props.ClusterStatus
		}
		if err != nil {
			c.logger.Verbose("Describe failed (%v), retrying in %s", err, delay.Round(time.Second))
			return
		}
		c.logger.Info("Cluster %q is %s, checking again in %s", id, status, delay.Round(time.Second))
	})

	err := poller.Until(ctx, func(ctx context.Context) (bool, error) {
		p, err := c.Describe(ctx, id)
		if err != nil {
			return false, err
		}
		props = p
		return p.Available(), nil
	})
	if err != nil {
		if errors.Is(err, poll.ErrGaveUp) {
			return props, fmt.Errorf("cluster %q did not become available: %w: %w", id, dwh.ErrClusterAPI, err)
		}
		return props, err
	}
	return props, nil
}

// Delete removes cluster id without a final snapshot.
func (c *Client) Delete(ctx context.Context, id string) (*Properties, error) {
	c.logger.Verbose("Deleting cluster %q", id)

	out, err := c.api.DeleteCluster(ctx, &redshift.DeleteClusterInput{
		ClusterIdentifier:        aws.String(id),
		SkipFinalClusterSnapshot: aws.Bool(true),
	})
	if err != nil {
		return nil, wrapAPIError("delete", id, err)
	}
	if out.Cluster == nil {
		return &Properties{ClusterIdentifier: id}, nil
	}
	return propertiesFrom(*out.Cluster), nil
}

func wrapAPIError(op, id string, err error) error {
	var notFound *types.ClusterNotFoundFault
	if errors.As(err, &notFound) {
		return fmt.Errorf("%s %q: %w: %w", op, id, ErrClusterNotFound, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("failed to %s cluster %q: %w: %w", op, id, dwh.ErrClusterAPI, err)
}
