// Package dynamodb provides a contentadmin.Repository over DynamoDB using
// the single-table layout the public frontend reads:
//
//	Post:    PK=BLOG#<slug>      SK=METADATA
//	Module:  PK=PLAYBOOK#<slug>  SK=METADATA
//	Problem: PK=PLAYBOOK#<slug>  SK=PROBLEM#<id>
//
// Playbook items carry collection="PLAYBOOK" for the collection GSI used by
// the reader; the write path itself only ever queries by PK.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/botthef/content-admin/pkg/contentadmin"
)

const (
	skMetadata      = "METADATA"
	problemSKPrefix = "PROBLEM#"

	collectionPlaybook = "PLAYBOOK"

	// DynamoDB caps BatchWriteItem at 25 requests.
	batchWriteLimit = 25
)

// Config options for the DynamoDB repository
type Config struct {
	Region        string // AWS region
	BlogTable     string // table holding blog post records
	PlaybookTable string // table holding module and problem records
	Endpoint      string // optional endpoint override for DynamoDB Local

	// Static credentials; the default credential chain is used when empty
	AccessKeyID     string
	SecretAccessKey string
}

// Repository implements contentadmin.Repository over DynamoDB.
type Repository struct {
	client        *dynamodb.Client
	blogTable     string
	playbookTable string
}

var _ contentadmin.Repository = (*Repository)(nil)

// New creates a DynamoDB-backed repository.
func New(ctx context.Context, config Config) (*Repository, error) {
	if config.BlogTable == "" || config.PlaybookTable == "" {
		return nil, errors.New("blog and playbook table names are required")
	}
	if config.Region == "" {
		config.Region = "us-west-2"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*dynamodb.Options)
	if config.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
		})
	}

	return &Repository{
		client:        dynamodb.NewFromConfig(awsCfg, clientOpts...),
		blogTable:     config.BlogTable,
		playbookTable: config.PlaybookTable,
	}, nil
}

func blogPK(slug string) string     { return "BLOG#" + slug }
func playbookPK(slug string) string { return "PLAYBOOK#" + slug }
func problemSK(id string) string    { return problemSKPrefix + id }

func itemKey(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// Item shapes add the key attributes to the domain records. Slug and
// problem ID live in the key, not as attributes.

type postItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	contentadmin.Post
}

type moduleItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	Collection string `dynamodbav:"collection"`
	contentadmin.Module
}

type problemItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	Collection string `dynamodbav:"collection"`
	contentadmin.Problem
}

// Post operations

func (r *Repository) GetPost(ctx context.Context, slug string) (*contentadmin.Post, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.blogTable),
		Key:       itemKey(blogPK(slug), skMetadata),
	})
	if err != nil {
		return nil, storeError("get post", err)
	}
	if out.Item == nil {
		return nil, contentadmin.ErrPostNotFound
	}

	var item postItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal post item: %w", err)
	}
	item.Post.Slug = slug
	return &item.Post, nil
}

func (r *Repository) PutPost(ctx context.Context, post *contentadmin.Post) error {
	item, err := attributevalue.MarshalMap(postItem{
		PK:   blogPK(post.Slug),
		SK:   skMetadata,
		Post: *post,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal post item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.blogTable),
		Item:      item,
	})
	if err != nil {
		return storeError("put post", err)
	}
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, slug string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.blogTable),
		Key:       itemKey(blogPK(slug), skMetadata),
	})
	if err != nil {
		return storeError("delete post", err)
	}
	return nil
}

// Module operations

func (r *Repository) GetModule(ctx context.Context, slug string) (*contentadmin.Module, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.playbookTable),
		Key:       itemKey(playbookPK(slug), skMetadata),
	})
	if err != nil {
		return nil, storeError("get module", err)
	}
	if out.Item == nil {
		return nil, contentadmin.ErrModuleNotFound
	}

	var item moduleItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal module item: %w", err)
	}
	item.Module.Slug = slug
	return &item.Module, nil
}

func (r *Repository) PutModule(ctx context.Context, module *contentadmin.Module) error {
	item, err := attributevalue.MarshalMap(moduleItem{
		PK:         playbookPK(module.Slug),
		SK:         skMetadata,
		Collection: collectionPlaybook,
		Module:     *module,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal module item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.playbookTable),
		Item:      item,
	})
	if err != nil {
		return storeError("put module", err)
	}
	return nil
}

func (r *Repository) DeleteModule(ctx context.Context, slug string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.playbookTable),
		Key:       itemKey(playbookPK(slug), skMetadata),
	})
	if err != nil {
		return storeError("delete module", err)
	}
	return nil
}

// Problem operations

func (r *Repository) GetProblem(ctx context.Context, moduleSlug, problemID string) (*contentadmin.Problem, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.playbookTable),
		Key:       itemKey(playbookPK(moduleSlug), problemSK(problemID)),
	})
	if err != nil {
		return nil, storeError("get problem", err)
	}
	if out.Item == nil {
		return nil, contentadmin.ErrProblemNotFound
	}

	var item problemItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal problem item: %w", err)
	}
	item.Problem.ID = problemID
	return &item.Problem, nil
}

func (r *Repository) PutProblem(ctx context.Context, moduleSlug string, problem *contentadmin.Problem) error {
	item, err := attributevalue.MarshalMap(problemItem{
		PK:         playbookPK(moduleSlug),
		SK:         problemSK(problem.ID),
		Collection: collectionPlaybook,
		Problem:    *problem,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal problem item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.playbookTable),
		Item:      item,
	})
	if err != nil {
		return storeError("put problem", err)
	}
	return nil
}

func (r *Repository) DeleteProblem(ctx context.Context, moduleSlug, problemID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.playbookTable),
		Key:       itemKey(playbookPK(moduleSlug), problemSK(problemID)),
	})
	if err != nil {
		return storeError("delete problem", err)
	}
	return nil
}

func (r *Repository) ListProblems(ctx context.Context, moduleSlug string) ([]*contentadmin.Problem, error) {
	var problems []*contentadmin.Problem

	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.playbookTable),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: playbookPK(moduleSlug)},
			":prefix": &types.AttributeValueMemberS{Value: problemSKPrefix},
		},
	}

	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, storeError("list problems", err)
		}

		for _, raw := range out.Items {
			var item problemItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("failed to unmarshal problem item: %w", err)
			}
			item.Problem.ID = strings.TrimPrefix(item.SK, problemSKPrefix)
			problems = append(problems, &item.Problem)
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	return problems, nil
}

func (r *Repository) DeleteProblems(ctx context.Context, moduleSlug string) error {
	problems, err := r.ListProblems(ctx, moduleSlug)
	if err != nil {
		return err
	}
	if len(problems) == 0 {
		return nil
	}

	requests := make([]types.WriteRequest, 0, len(problems))
	for _, p := range problems {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: itemKey(playbookPK(moduleSlug), problemSK(p.ID)),
			},
		})
	}

	for start := 0; start < len(requests); start += batchWriteLimit {
		end := min(start+batchWriteLimit, len(requests))
		batch := requests[start:end]

		// Resubmit unprocessed requests until DynamoDB accepts them all.
		for len(batch) > 0 {
			out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{r.playbookTable: batch},
			})
			if err != nil {
				return storeError("delete problems", err)
			}
			batch = out.UnprocessedItems[r.playbookTable]
		}
	}

	return nil
}

// storeError maps a DynamoDB failure onto the transient-store sentinel,
// keeping the service code's error code in the message.
func storeError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s: %s: %s",
			contentadmin.ErrStoreUnavailable, op, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return fmt.Errorf("%w: %s: %v", contentadmin.ErrStoreUnavailable, op, err)
}
