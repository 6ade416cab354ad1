// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"eduassist-go/internal/config"
	"eduassist-go/internal/model"
	"eduassist-go/pkg/log"
)

var ESClient *elasticsearch.Client

// InitES 初始化 Elasticsearch 客户端，并确保转录索引存在。
func InitES(esCfg config.ElasticsearchConfig) error {
	cfg := elasticsearch.Config{
		Addresses: strings.Split(esCfg.Addresses, ","),
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(client, esCfg.IndexName)
}

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func createIndexIfNotExists(client *elasticsearch.Client, indexName string) error {
	res, err := client.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	defer res.Body.Close()
	// 如果 res.StatusCode 是 200，说明索引已存在
	if res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	mapping := `{
		"mappings": {
			"properties": {
				"doc_id":     { "type": "keyword" },
				"user_id":    { "type": "keyword" },
				"session_id": { "type": "keyword" },
				"message_id": { "type": "keyword" },
				"sender":     { "type": "keyword" },
				"text":       { "type": "text" },
				"timestamp":  { "type": "date" }
			}
		}
	}`

	res, err = client.Indices.Create(
		indexName,
		client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}

// TranscriptIndex 是会话消息的检索索引。
type TranscriptIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewTranscriptIndex 创建一个绑定到指定索引的 TranscriptIndex。
func NewTranscriptIndex(client *elasticsearch.Client, index string) *TranscriptIndex {
	return &TranscriptIndex{client: client, index: index}
}

// IndexDocuments 逐条写入文档，最后一条写入后刷新索引。
func (t *TranscriptIndex) IndexDocuments(ctx context.Context, docs []model.TranscriptDocument) error {
	for i, doc := range docs {
		docBytes, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		refresh := "false"
		if i == len(docs)-1 {
			refresh = "wait_for"
		}
		req := esapi.IndexRequest{
			Index:      t.index,
			DocumentID: doc.DocID,
			Body:       bytes.NewReader(docBytes),
			Refresh:    refresh,
		}
		res, err := req.Do(ctx, t.client)
		if err != nil {
			return err
		}
		if res.IsError() {
			log.Errorf("索引文档到 Elasticsearch 出错: %s", res.String())
			res.Body.Close()
			return errors.New("failed to index document")
		}
		res.Body.Close()
	}
	return nil
}

// DeleteSession 删除会话在索引中的全部文档。
func (t *TranscriptIndex) DeleteSession(ctx context.Context, sessionID string) error {
	body, err := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"session_id": sessionID},
		},
	})
	if err != nil {
		return err
	}
	res, err := t.client.DeleteByQuery(
		[]string{t.index},
		bytes.NewReader(body),
		t.client.DeleteByQuery.WithContext(ctx),
		t.client.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return fmt.Errorf("failed to delete session documents: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}
	return nil
}

// Search 在用户的消息中全文检索，返回命中的文档。
func (t *TranscriptIndex) Search(ctx context.Context, userID, query string, size int) ([]model.TranscriptDocument, error) {
	var buf bytes.Buffer
	esQuery := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"user_id": userID},
				},
				"must": map[string]interface{}{
					"match": map[string]interface{}{"text": query},
				},
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := t.client.Search(
		t.client.Search.WithContext(ctx),
		t.client.Search.WithIndex(t.index),
		t.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search transcripts: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.TranscriptDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}
	docs := make([]model.TranscriptDocument, 0, len(esResponse.Hits.Hits))
	for _, h := range esResponse.Hits.Hits {
		docs = append(docs, h.Source)
	}
	return docs, nil
}
